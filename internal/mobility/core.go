// Package mobility implements the mobility core: users, radio cells, PDU
// sessions, and the MobilityCore scheduler that orchestrates them and
// emits a normalised event stream.
package mobility

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/geo"
)

// Core is the MobilityCore: it owns the RadioCells, the orphan user list,
// and the IP pool, and exposes a single Tick operation plus read accessors.
// All mutation is serialised by lock, a single-writer/multi-reader lock —
// Tick takes the writer, reads take the reader.
type Core struct {
	lock sync.RWMutex

	users     map[uint32]*User
	cells     []*RadioCell // probed in this order, both for attach and handover
	cellsByID map[uint32]*RadioCell

	orphans []uint32 // user ids currently unattached, in orphan-queue order

	ipPool *IPPool

	now func() time.Time
	rng *rand.Rand
}

// Config seeds a new Core.
type Config struct {
	Users  []*User
	Cells  []*RadioCell
	IPPool *IPPool

	// Now returns the current time; defaults to time.Now. Tests may
	// override it for deterministic timestamps.
	Now func() time.Time

	// RNG drives heading perturbation (User.Step) and usage sampling
	// (phase 4). New replaces a nil RNG with a fixed-seed default, so
	// perturbation is always applied; a velocity of 0 keeps a user still.
	RNG *rand.Rand
}

// New builds a Core from cfg. Every user starts as an orphan.
func New(cfg Config) *Core {
	c := &Core{
		users:     make(map[uint32]*User, len(cfg.Users)),
		cells:     append([]*RadioCell(nil), cfg.Cells...),
		cellsByID: make(map[uint32]*RadioCell, len(cfg.Cells)),
		ipPool:    cfg.IPPool,
		now:       cfg.Now,
		rng:       cfg.RNG,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(1, 2))
	}
	for _, u := range cfg.Users {
		c.users[u.ID] = u
		c.orphans = append(c.orphans, u.ID)
	}
	for _, cell := range c.cells {
		c.cellsByID[cell.ID] = cell
	}
	return c
}

// Users returns a snapshot of all known users, keyed by nothing in
// particular (caller-visible order is not guaranteed).
func (c *Core) Users() []*User {
	c.lock.RLock()
	defer c.lock.RUnlock()
	out := make([]*User, 0, len(c.users))
	for _, u := range c.users {
		out = append(out, u)
	}
	return out
}

// Cells returns the RadioCells in probing order.
func (c *Core) Cells() []*RadioCell {
	c.lock.RLock()
	defer c.lock.RUnlock()
	out := make([]*RadioCell, len(c.cells))
	copy(out, c.cells)
	return out
}

// ConnectedSessions returns every currently attached PduSession, cell by
// cell in probing order, sessions within a cell in insertion order.
func (c *Core) ConnectedSessions() []*PduSession {
	c.lock.RLock()
	defer c.lock.RUnlock()
	var out []*PduSession
	for _, cell := range c.cells {
		out = append(out, cell.Sessions()...)
	}
	return out
}

// UsageSampler is the subset of EdgeNetwork that the usage-sampling phase
// needs. It is satisfied by *edge.Network.
type UsageSampler interface {
	ApplicationIDs() []uint32
	UseApplication(session *PduSession, appID uint32, radioPos geo.Point) error
}

// Tick runs one scheduling pass, in phase order, holding the writer lock
// for its entire duration. It is not cancellable once started; ctx is only
// forwarded to the EventLog appends (the usage sampler does not receive it).
func (c *Core) Tick(ctx context.Context, log eventbus.Log, network UsageSampler) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	ts := c.now()

	if err := c.phaseAttachOrphans(ctx, log, ts); err != nil {
		return err
	}
	if err := c.phaseAdvanceSessions(ctx, log, ts); err != nil {
		return err
	}
	if err := c.phaseMotionReports(ctx, log, ts); err != nil {
		return err
	}
	if network != nil {
		if err := c.phaseUsageSampling(network); err != nil {
			return err
		}
	}
	return nil
}

// phaseAttachOrphans attaches every orphan that now falls inside a cell's
// coverage, assigning it an IP address and a PDU session.
func (c *Core) phaseAttachOrphans(ctx context.Context, log eventbus.Log, ts time.Time) error {
	var events []eventbus.Event
	var remaining []uint32

	for _, uid := range c.orphans {
		u, ok := c.users[uid]
		if !ok {
			continue
		}
		cell := c.firstContaining(u)
		if cell == nil {
			remaining = append(remaining, uid)
			continue
		}
		addr, ok := c.ipPool.Pop()
		if !ok {
			return fmt.Errorf("%w: ip pool exhausted attaching user %d", ErrInvariantViolation, uid)
		}
		sess := newPduSession(u, addr)
		cell.Attach(sess)

		events = append(events,
			eventbus.NewLocationReporting(uid, cell.ID, u.Position(), eventbus.LdrEnteringArea, ts),
			eventbus.NewPdnConnection(uid, eventbus.PdnCreated, addr.String(), ts),
		)
	}
	c.orphans = remaining

	if len(events) == 0 {
		return nil
	}
	return log.AppendMany(ctx, events)
}

// phaseAdvanceSessions steps every cell's owned users, then attempts
// silent handover for anyone who fell out of coverage.
func (c *Core) phaseAdvanceSessions(ctx context.Context, log eventbus.Log, ts time.Time) error {
	step := func(u *User) { u.Step(c.rng) }

	var allDetached []detachedSession
	for _, cell := range c.cells {
		for _, sess := range cell.Advance(step) {
			allDetached = append(allDetached, detachedSession{sess: sess, sourceCellID: cell.ID})
		}
	}

	var events []eventbus.Event
	for _, d := range allDetached {
		sess := d.sess
		if target := c.firstContaining(sess.User); target != nil {
			target.Attach(sess) // handover: silent, no events
			continue
		}

		user, addr := sess.Release()
		c.ipPool.Push(addr)
		c.orphans = append(c.orphans, user.ID)

		events = append(events,
			eventbus.NewLocationReporting(user.ID, d.sourceCellID, user.Position(), eventbus.LdrLeavingArea, ts),
			eventbus.NewPdnConnection(user.ID, eventbus.PdnReleased, addr.String(), ts),
		)
	}

	if len(events) == 0 {
		return nil
	}
	return log.AppendMany(ctx, events)
}

type detachedSession struct {
	sess         *PduSession
	sourceCellID uint32
}

// phaseMotionReports emits one location report per currently attached
// session, regardless of whether it moved this tick.
func (c *Core) phaseMotionReports(ctx context.Context, log eventbus.Log, ts time.Time) error {
	var events []eventbus.Event
	for _, cell := range c.cells {
		for _, sess := range cell.Sessions() {
			events = append(events,
				eventbus.NewLocationReporting(sess.User.ID, cell.ID, sess.User.Position(), eventbus.LdrMotion, ts),
			)
		}
	}
	if len(events) == 0 {
		return nil
	}
	return log.AppendMany(ctx, events)
}

// phaseUsageSampling selects floor(attached/2) attached sessions uniformly
// without replacement, each exercising one uniformly chosen application.
func (c *Core) phaseUsageSampling(network UsageSampler) error {
	var attached []*PduSession
	var attachedCell []uint32
	for _, cell := range c.cells {
		for _, sess := range cell.Sessions() {
			attached = append(attached, sess)
			attachedCell = append(attachedCell, cell.ID)
		}
	}
	n := len(attached) / 2
	if n == 0 {
		return nil
	}
	appIDs := network.ApplicationIDs()
	if len(appIDs) == 0 {
		return nil // no applications to sample from: skipped silently
	}

	perm := c.rng.Perm(len(attached))
	for i := 0; i < n; i++ {
		idx := perm[i]
		sess := attached[idx]
		cell := c.cellsByID[attachedCell[idx]]
		appID := appIDs[c.rng.IntN(len(appIDs))]
		if err := network.UseApplication(sess, appID, cell.Centre); err != nil {
			return fmt.Errorf("mobility: usage sampling: %w", err)
		}
	}
	return nil
}

// firstContaining returns the first cell (in probing order) containing u,
// or nil if none does.
func (c *Core) firstContaining(u *User) *RadioCell {
	for _, cell := range c.cells {
		if cell.Contains(u) {
			return cell
		}
	}
	return nil
}
