package edge

import (
	"fmt"
	"sync"
	"time"

	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/mobility"
)

// delayPerMeter is the per-meter distance delay factor used by
// UseApplication: euclidean_distance * 1.5 seconds.
const delayPerMeter = 1.5

// processingTime stands in for a locally measured processing time added on
// top of the distance delay; this emulator has no real processing
// pipeline to measure, so it uses a small fixed constant.
const processingTime = 10 * time.Millisecond

// NetworkLogEntry records one UseApplication call.
type NetworkLogEntry struct {
	UserID        uint32
	IP            string
	TimeUsedS     float64
	AppID         uint32
	WallTimestamp time.Time
}

// Network is the EdgeNetwork: the set of EdgeDataCenters and the routing
// of a use-request to the EDC hosting it. Writers (AddApplication,
// RemoveApplication, UseApplication) take the exclusive lock, readers
// take the shared lock.
type Network struct {
	mu sync.RWMutex

	edcs  map[uint32]*DataCenter
	order []uint32 // EDC probing order, for deterministic first-match lookup

	log []NetworkLogEntry

	now func() time.Time
}

// NewNetwork creates a Network hosting the given EDCs, in the given
// probing order.
func NewNetwork(edcs []*DataCenter) *Network {
	n := &Network{
		edcs: make(map[uint32]*DataCenter, len(edcs)),
		now:  time.Now,
	}
	for _, d := range edcs {
		n.edcs[d.ID] = d
		n.order = append(n.order, d.ID)
	}
	return n
}

// DataCenters returns the hosted EDCs in probing order.
func (n *Network) DataCenters() []*DataCenter {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*DataCenter, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.edcs[id])
	}
	return out
}

// DataCenter returns the EDC for id, if hosted.
func (n *Network) DataCenter(id uint32) (*DataCenter, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	d, exists := n.edcs[id]
	return d, exists
}

// AddApplication hosts an empty application under appID at edcID.
func (n *Network) AddApplication(edcID, appID uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	d, exists := n.edcs[edcID]
	if !exists {
		return fmt.Errorf("edge: add application: %w", ErrNotFound)
	}
	return d.AddApplication(appID)
}

// RemoveApplication un-hosts appID from edcID.
func (n *Network) RemoveApplication(edcID, appID uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	d, exists := n.edcs[edcID]
	if !exists {
		return fmt.Errorf("edge: remove application: %w", ErrNotFound)
	}
	return d.RemoveApplication(appID)
}

// TotalUses returns the total use count of appID at edcID.
func (n *Network) TotalUses(edcID, appID uint32) (uint32, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	d, exists := n.edcs[edcID]
	if !exists {
		return 0, fmt.Errorf("edge: total uses: %w", ErrNotFound)
	}
	if !d.Hosts(appID) {
		return 0, fmt.Errorf("edge: total uses: %w", ErrNotFound)
	}
	return d.TotalUses(appID), nil
}

// ApplicationIDs returns the ids of every application hosted anywhere in
// the network, across all EDCs in probing order, used by MobilityCore's
// usage-sampling phase to pick one uniformly. Satisfies
// mobility.UsageSampler.
func (n *Network) ApplicationIDs() []uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var ids []uint32
	for _, edcID := range n.order {
		for _, app := range n.edcs[edcID].Applications() {
			ids = append(ids, app.ID)
		}
	}
	return ids
}

// UseApplication locates the unique EDC hosting appID (first match in
// probing order), records the use, and appends a NetworkLogEntry with the
// computed delay (euclidean_distance(radioPos, edc.Position) * 1.5 seconds,
// plus a fixed processing time) to the network's own log. It does not
// return the entry; it returns only an error, and the entry is read back
// through NetworkLog. Satisfies mobility.UsageSampler.
func (n *Network) UseApplication(session *mobility.PduSession, appID uint32, radioPos geo.Point) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var hosting *DataCenter
	for _, edcID := range n.order {
		if n.edcs[edcID].Hosts(appID) {
			hosting = n.edcs[edcID]
			break
		}
	}
	if hosting == nil {
		return ErrApplicationNotFound
	}

	ts := n.now()
	ip := session.IP.String()
	if err := hosting.RecordUse(appID, ip, ts); err != nil {
		return fmt.Errorf("edge: use application: %w", err)
	}

	delaySeconds := geo.Distance(radioPos, hosting.Position)*delayPerMeter + processingTime.Seconds()
	n.log = append(n.log, NetworkLogEntry{
		UserID:        session.User.ID,
		IP:            ip,
		TimeUsedS:     delaySeconds,
		AppID:         appID,
		WallTimestamp: ts,
	})
	return nil
}

// NetworkLog returns a snapshot of recorded usage entries, in the order
// they were recorded.
func (n *Network) NetworkLog() []NetworkLogEntry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]NetworkLogEntry, len(n.log))
	copy(out, n.log)
	return out
}
