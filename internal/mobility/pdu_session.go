package mobility

import "net/netip"

// PduSession binds a user to an IP address while attached to a radio cell.
// CellID is a weak reference (identity only); callers that need the cell
// look it up on MobilityCore, avoiding a cyclic pointer relationship
// between sessions and cells.
type PduSession struct {
	User   *User
	IP     netip.Addr
	CellID uint32
}

// newPduSession creates a session bound to user and ip, not yet attached to
// any cell (CellID is set by RadioCell.Attach).
func newPduSession(user *User, ip netip.Addr) *PduSession {
	return &PduSession{User: user, IP: ip}
}

// Release consumes the session, returning the user (to be re-orphaned) and
// the ip (to be returned to the pool).
func (s *PduSession) Release() (*User, netip.Addr) {
	return s.User, s.IP
}
