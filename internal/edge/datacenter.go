package edge

import (
	"fmt"
	"time"

	"github.com/mnedge/emulator/internal/geo"
)

// DataCenter is an EdgeDataCenter: a compute host in the plane hosting a set
// of Applications, keyed by id. A DataCenter holds no lock of its own; it
// is exclusively owned by its Network under the Network's writer lock.
type DataCenter struct {
	ID       uint32
	Name     string
	Position geo.Point

	apps map[uint32]*Application
	// order preserves insertion order for deterministic iteration.
	order []uint32
}

// NewDataCenter creates an EDC with no hosted applications.
func NewDataCenter(id uint32, name string, pos geo.Point) *DataCenter {
	return &DataCenter{ID: id, Name: name, Position: pos, apps: make(map[uint32]*Application)}
}

// AddApplication hosts a new, empty Application under appID. Fails with
// ErrAlreadyExists if appID is already hosted here.
func (d *DataCenter) AddApplication(appID uint32) error {
	if _, exists := d.apps[appID]; exists {
		return fmt.Errorf("edge: add application %d on edc %d: %w", appID, d.ID, ErrAlreadyExists)
	}
	d.apps[appID] = NewApplication(appID)
	d.order = append(d.order, appID)
	return nil
}

// RemoveApplication un-hosts appID. Fails with ErrNotFound if it isn't
// hosted here.
func (d *DataCenter) RemoveApplication(appID uint32) error {
	if _, exists := d.apps[appID]; !exists {
		return fmt.Errorf("edge: remove application %d on edc %d: %w", appID, d.ID, ErrNotFound)
	}
	delete(d.apps, appID)
	for i, id := range d.order {
		if id == appID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// RecordUse appends a use of appID at ip and t. Fails with ErrNotFound if
// appID isn't hosted here.
func (d *DataCenter) RecordUse(appID uint32, ip string, t time.Time) error {
	app, exists := d.apps[appID]
	if !exists {
		return fmt.Errorf("edge: record use of application %d on edc %d: %w", appID, d.ID, ErrNotFound)
	}
	app.RecordUse(ip, t)
	return nil
}

// TotalUses returns the total use count of appID, or 0 if not hosted.
func (d *DataCenter) TotalUses(appID uint32) uint32 {
	app, exists := d.apps[appID]
	if !exists {
		return 0
	}
	return app.TotalUses()
}

// Application returns the hosted Application for appID, if any.
func (d *DataCenter) Application(appID uint32) (*Application, bool) {
	app, exists := d.apps[appID]
	return app, exists
}

// Applications returns the hosted applications, in hosting order.
func (d *DataCenter) Applications() []*Application {
	out := make([]*Application, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.apps[id])
	}
	return out
}

// Hosts reports whether appID is hosted at this EDC.
func (d *DataCenter) Hosts(appID uint32) bool {
	_, exists := d.apps[appID]
	return exists
}
