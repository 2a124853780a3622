package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mnedge/emulator/internal/edge"
	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/exposure"
	"github.com/mnedge/emulator/internal/metrics"
	"github.com/mnedge/emulator/internal/mobility"
	"github.com/mnedge/emulator/internal/model"
)

// EmulatorService implements the operations behind the control-plane API,
// translating mobility/edge/exposure domain calls into wire DTOs and
// ServiceErrors.
type EmulatorService struct {
	core    *mobility.Core
	network *edge.Network
	log     eventbus.Log
	bus     *exposure.Bus
	metrics *metrics.Manager
}

// NewEmulatorService glues the four subsystems together.
func NewEmulatorService(core *mobility.Core, network *edge.Network, log eventbus.Log, bus *exposure.Bus) *EmulatorService {
	return &EmulatorService{core: core, network: network, log: log, bus: bus}
}

// NewEmulatorServiceWithMetrics is NewEmulatorService plus a Manager that
// records tick/event/publish counters as a side effect of normal operation.
// A nil m makes this identical to NewEmulatorService.
func NewEmulatorServiceWithMetrics(core *mobility.Core, network *edge.Network, log eventbus.Log, bus *exposure.Bus, m *metrics.Manager) *EmulatorService {
	return &EmulatorService{core: core, network: network, log: metrics.InstrumentLog(log, m), bus: bus, metrics: m}
}

// EdgeDataCenters returns every EDC (GET /network/edge_data_centers).
func (s *EmulatorService) EdgeDataCenters() []model.EDC {
	dcs := s.network.DataCenters()
	out := make([]model.EDC, 0, len(dcs))
	for _, d := range dcs {
		out = append(out, model.EDC{ID: d.ID, Name: d.Name, X: d.Position.X, Y: d.Position.Y})
	}
	return out
}

// Applications returns the applications hosted at edcID
// (GET /network/edge_data_centers/{edc_id}/applications).
func (s *EmulatorService) Applications(edcID uint32) ([]model.Application, error) {
	dc, ok := s.network.DataCenter(edcID)
	if !ok {
		return nil, notFound("edge data center %d not found", edcID)
	}
	apps := dc.Applications()
	out := make([]model.Application, 0, len(apps))
	for _, a := range apps {
		out = append(out, toWireApplication(a))
	}
	return out, nil
}

func toWireApplication(a *edge.Application) model.Application {
	accesses := a.Accesses()
	wire := make(map[string][]int64, len(accesses))
	for ip, list := range accesses {
		secs := make([]int64, len(list))
		for i, t := range list {
			secs[i] = t.Unix()
		}
		wire[ip] = secs
	}
	return model.Application{ID: a.ID, Accesses: wire}
}

// AddApplication hosts a new application at edcID
// (POST /network/edge_data_centers/{edc_id}/applications/{app_id}).
func (s *EmulatorService) AddApplication(edcID, appID uint32) error {
	if err := s.network.AddApplication(edcID, appID); err != nil {
		return mapEdgeError(err, edcID, appID)
	}
	return nil
}

// RemoveApplication un-hosts an application from edcID
// (DELETE /network/edge_data_centers/{edc_id}/applications/{app_id}).
func (s *EmulatorService) RemoveApplication(edcID, appID uint32) error {
	if err := s.network.RemoveApplication(edcID, appID); err != nil {
		return mapEdgeError(err, edcID, appID)
	}
	return nil
}

// TotalUsages returns the total use count of appID at edcID
// (GET .../applications/{app_id}/total_usages).
func (s *EmulatorService) TotalUsages(edcID, appID uint32) (uint32, error) {
	total, err := s.network.TotalUses(edcID, appID)
	if err != nil {
		return 0, mapEdgeError(err, edcID, appID)
	}
	return total, nil
}

func mapEdgeError(err error, edcID, appID uint32) error {
	switch {
	case errors.Is(err, edge.ErrAlreadyExists):
		return &ServiceError{Code: "CONFLICT", Message: fmt.Sprintf("application %d already hosted at edc %d", appID, edcID)}
	case errors.Is(err, edge.ErrNotFound):
		return notFound("application %d not found at edc %d", appID, edcID)
	default:
		return internalError("%v", err)
	}
}

// Users returns every known user (GET /mobile_network/users).
func (s *EmulatorService) Users() []model.User {
	users := s.core.Users()
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		pos := u.Position()
		out = append(out, model.User{ID: u.ID, X: pos.X, Y: pos.Y})
	}
	return out
}

// ConnectedUsers returns every currently attached session
// (GET /mobile_network/connected_users).
func (s *EmulatorService) ConnectedUsers() []model.PduSession {
	sessions := s.core.ConnectedSessions()
	out := make([]model.PduSession, 0, len(sessions))
	for _, sess := range sessions {
		pos := sess.User.Position()
		out = append(out, model.PduSession{
			User: model.User{ID: sess.User.ID, X: pos.X, Y: pos.Y},
			IP:   sess.IP.String(),
			RAN:  sess.CellID,
		})
	}
	return out
}

// RadioCells returns every radio cell (GET /mobile_network/rans).
func (s *EmulatorService) RadioCells() []model.RadioCell {
	cells := s.core.Cells()
	out := make([]model.RadioCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, model.RadioCell{ID: c.ID, X: c.Centre.X, Y: c.Centre.Y, Radius: c.Radius})
	}
	return out
}

// UpdateUserPositions runs one MobilityCore tick
// (POST /mobile_network/update_user_positions).
func (s *EmulatorService) UpdateUserPositions(ctx context.Context) error {
	start := time.Now()
	err := s.core.Tick(ctx, s.log, s.network)
	if s.metrics != nil {
		s.metrics.RecordTick(err == nil, time.Since(start).Nanoseconds())
	}
	if err != nil {
		if errors.Is(err, mobility.ErrInvariantViolation) {
			panic(err) // invariant violations must terminate the process
		}
		return internalError("%v", err)
	}
	return nil
}

// Events returns every event in the log (GET /mobile_network_exposure/events).
func (s *EmulatorService) Events(ctx context.Context) ([]model.Event, error) {
	events, err := s.log.ScanAll(ctx)
	if err != nil {
		return nil, internalError("%v", err)
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.ToWire())
	}
	return out, nil
}

// Subscribers returns the registered subscribers
// (GET /mobile_network_exposure/subscribers).
func (s *EmulatorService) Subscribers() []model.Subscriber {
	subs := s.bus.Subscribers()
	out := make([]model.Subscriber, 0, len(subs))
	for _, sub := range subs {
		ids := make([]uint32, 0, len(sub.UserIDs))
		for id := range sub.UserIDs {
			ids = append(ids, id)
		}
		out = append(out, model.Subscriber{
			ID:             sub.ID,
			NotifyEndpoint: sub.NotifyEndpoint,
			Kind:           string(sub.Kind),
			UserIDs:        ids,
		})
	}
	return out
}

// AddSubscriber registers a new subscriber (POST /mobile_network_exposure/subscribers).
func (s *EmulatorService) AddSubscriber(wire model.Subscriber) (string, error) {
	if wire.NotifyEndpoint == "" {
		return "", invalidArgument("notify_endpoint is required")
	}
	kind := eventbus.Kind(wire.Kind)
	if kind != eventbus.KindPdnConnection && kind != eventbus.KindLocationReporting {
		return "", invalidArgument("kind must be PdnConnection or LocationReporting, got %q", wire.Kind)
	}
	sub := exposure.NewSubscriber(wire.NotifyEndpoint, kind, wire.UserIDs)
	id, err := s.bus.AddSubscriber(sub)
	if err != nil {
		return "", internalError("%v", err)
	}
	return id, nil
}

// PublishEvents runs one ExposureBus publish pass
// (POST /mobile_network_exposure/events/publish).
func (s *EmulatorService) PublishEvents(ctx context.Context) error {
	err := s.bus.Publish(ctx, s.log)
	if s.metrics != nil {
		s.metrics.RecordPublish(err == nil)
	}
	if err != nil {
		return internalError("%v", err)
	}
	return nil
}
