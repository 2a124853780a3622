package mobility

import (
	"fmt"
	"net/netip"
)

// IPPool is a finite, ordered set of free IPv4 addresses. Pop removes the
// lowest-indexed free address; Push returns one to the pool. The pool is
// exclusively owned by MobilityCore and mutated only inside tick: it
// needs no lock of its own.
type IPPool struct {
	free []netip.Addr
}

// NewIPPool creates a pool seeded with addrs, in the given order.
func NewIPPool(addrs []netip.Addr) *IPPool {
	p := &IPPool{free: make([]netip.Addr, len(addrs))}
	copy(p.free, addrs)
	return p
}

// Pop removes and returns the next free address. ok is false if the pool
// is exhausted.
func (p *IPPool) Pop() (addr netip.Addr, ok bool) {
	if len(p.free) == 0 {
		return netip.Addr{}, false
	}
	addr = p.free[0]
	p.free = p.free[1:]
	return addr, true
}

// Push returns addr to the free pool.
func (p *IPPool) Push(addr netip.Addr) {
	p.free = append(p.free, addr)
}

// Len returns the number of currently free addresses.
func (p *IPPool) Len() int {
	return len(p.free)
}

// GenerateAddrs enumerates up to count host addresses from cidr (e.g.
// "10.0.0.0/16"), skipping the network address, in ascending order. It is
// the bootstrap-time source of the pool handed to NewIPPool/NewBootstrap.
func GenerateAddrs(cidr string, count int) ([]netip.Addr, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("mobility: parse ip pool cidr %q: %w", cidr, err)
	}
	prefix = prefix.Masked()

	addrs := make([]netip.Addr, 0, count)
	addr := prefix.Addr().Next() // skip the network address itself
	for len(addrs) < count && prefix.Contains(addr) {
		addrs = append(addrs, addr)
		addr = addr.Next()
	}
	if len(addrs) < count {
		return nil, fmt.Errorf("mobility: cidr %q has only %d usable addresses, need %d", cidr, len(addrs), count)
	}
	return addrs, nil
}
