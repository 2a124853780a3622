package mobility

import "github.com/mnedge/emulator/internal/geo"

// RadioCell is a disc in the plane that owns the PduSessions of the users
// currently inside it. A RadioCell holds no lock of its own; all access is
// serialized by MobilityCore's writer lock.
type RadioCell struct {
	ID     uint32
	Centre geo.Point
	Radius float64

	order  []uint32 // user ids, insertion order, for deterministic iteration
	byUser map[uint32]*PduSession
}

// NewRadioCell creates an empty RadioCell.
func NewRadioCell(id uint32, centre geo.Point, radius float64) *RadioCell {
	return &RadioCell{
		ID:     id,
		Centre: centre,
		Radius: radius,
		byUser: make(map[uint32]*PduSession),
	}
}

// Contains reports whether u is within coverage: Euclidean distance from
// the cell's centre to the user's position is <= radius (boundary counts
// as contained).
func (c *RadioCell) Contains(u *User) bool {
	return geo.Distance(c.Centre, u.Position()) <= c.Radius
}

// Attach adds session to the cell's owned set. The caller must have
// already verified Contains for the session's user.
func (c *RadioCell) Attach(s *PduSession) {
	s.CellID = c.ID
	if _, exists := c.byUser[s.User.ID]; !exists {
		c.order = append(c.order, s.User.ID)
	}
	c.byUser[s.User.ID] = s
}

// Advance steps every owned user and returns the sessions whose user is no
// longer contained, removing them from the owned set. Iteration is in
// insertion order.
func (c *RadioCell) Advance(step func(*User)) []*PduSession {
	var detached []*PduSession
	var remaining []uint32
	for _, uid := range c.order {
		sess, ok := c.byUser[uid]
		if !ok {
			continue
		}
		step(sess.User)
		if c.Contains(sess.User) {
			remaining = append(remaining, uid)
			continue
		}
		delete(c.byUser, uid)
		detached = append(detached, sess)
	}
	c.order = remaining
	return detached
}

// Sessions returns a read-only, insertion-ordered snapshot of the sessions
// currently owned by this cell.
func (c *RadioCell) Sessions() []*PduSession {
	out := make([]*PduSession, 0, len(c.order))
	for _, uid := range c.order {
		if s, ok := c.byUser[uid]; ok {
			out = append(out, s)
		}
	}
	return out
}
