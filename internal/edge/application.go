// Package edge implements the edge-compute fabric: applications, edge data
// centers, and the network that routes a use to the EDC hosting it and
// computes distance-dependent delay.
package edge

import (
	"math"
	"time"
)

// Application is an identified workload whose per-ip access log is tracked
// by its hosting EdgeDataCenter. Application holds no lock of its own; it
// is exclusively owned by its EdgeDataCenter under the EdgeNetwork writer
// lock.
type Application struct {
	ID uint32

	// accesses maps an IP string to the ordered list of access timestamps
	// recorded against it. The wire representation is whole seconds since
	// the Unix epoch, chosen so that two snapshots of the same Application
	// taken at different wall-clock times remain exactly comparable for
	// the PlacementController's own diffing (internal/controllerengine).
	accesses map[string][]time.Time
}

// NewApplication creates an empty Application.
func NewApplication(id uint32) *Application {
	return &Application{ID: id, accesses: make(map[string][]time.Time)}
}

// RecordUse appends t to the access list for ip.
func (a *Application) RecordUse(ip string, t time.Time) {
	a.accesses[ip] = append(a.accesses[ip], t)
}

// TotalUses returns the sum of access-list lengths across every ip. At the
// scales this emulator operates at, a uint32 sum realistically never
// overflows, so this only panics if it somehow does.
func (a *Application) TotalUses() uint32 {
	var total uint64
	for _, list := range a.accesses {
		total += uint64(len(list))
	}
	if total > math.MaxUint32 {
		panic("edge: Application.TotalUses: uint32 overflow")
	}
	return uint32(total)
}

// Accesses returns a read-only snapshot of the per-ip access lists.
func (a *Application) Accesses() map[string][]time.Time {
	out := make(map[string][]time.Time, len(a.accesses))
	for ip, list := range a.accesses {
		cp := make([]time.Time, len(list))
		copy(cp, list)
		out[ip] = cp
	}
	return out
}
