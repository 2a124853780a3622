package service

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/mnedge/emulator/internal/edge"
	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/exposure"
	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/mobility"
	"github.com/mnedge/emulator/internal/model"
)

func newTestService(t *testing.T) *EmulatorService {
	t.Helper()
	cell := mobility.NewRadioCell(0, geo.Point{X: 0, Y: 0}, 10)
	user := mobility.NewUser(7, geo.Point{X: 1, Y: 1}, 0, 0, 1000)
	pool := mobility.NewIPPool([]netip.Addr{netip.MustParseAddr("10.0.0.1")})
	core := mobility.New(mobility.Config{Users: []*mobility.User{user}, Cells: []*mobility.RadioCell{cell}, IPPool: pool})

	network := edge.NewNetwork([]*edge.DataCenter{edge.NewDataCenter(1, "edc-1", geo.Point{X: 0, Y: 0})})
	log := eventbus.NewMemoryLog()
	bus := exposure.New(nil)

	return NewEmulatorService(core, network, log, bus)
}

func TestEmulatorServiceAddApplicationConflict(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddApplication(1, 3); err != nil {
		t.Fatal(err)
	}
	err := svc.AddApplication(1, 3)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT ServiceError, got %v", err)
	}
}

func TestEmulatorServiceAddApplicationMissingEDC(t *testing.T) {
	svc := newTestService(t)
	err := svc.AddApplication(99, 3)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND ServiceError, got %v", err)
	}
}

func TestEmulatorServiceUpdateUserPositionsRunsTick(t *testing.T) {
	svc := newTestService(t)
	if err := svc.UpdateUserPositions(context.Background()); err != nil {
		t.Fatal(err)
	}
	events, err := svc.Events(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatalf("expected at least one event after a tick")
	}
}

func TestEmulatorServiceAddSubscriberValidation(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.AddSubscriber(model.Subscriber{Kind: "PdnConnection"}); err == nil {
		t.Fatal("expected error for missing notify_endpoint")
	}
	if _, err := svc.AddSubscriber(model.Subscriber{NotifyEndpoint: "http://example.com", Kind: "Bogus"}); err == nil {
		t.Fatal("expected error for invalid kind")
	}
	id, err := svc.AddSubscriber(model.Subscriber{NotifyEndpoint: "http://example.com", Kind: "PdnConnection", UserIDs: []uint32{7}})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a non-empty subscriber id")
	}
}
