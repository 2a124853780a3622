package mobility

import (
	"context"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/geo"
)

// noopNetwork reports no applications, so the usage-sampling phase is
// always skipped — the handover/attach/detach scenarios below don't
// exercise edge.Network.
type noopNetwork struct{}

func (noopNetwork) ApplicationIDs() []uint32 { return nil }
func (noopNetwork) UseApplication(*PduSession, uint32, geo.Point) error { return nil }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTickAttachThenMove(t *testing.T) {
	cell := NewRadioCell(0, geo.Point{X: 0, Y: 0}, 10)
	user := NewUser(7, geo.Point{X: 1, Y: 1}, 0, 0, 1000) // velocity 0: disables movement
	pool := NewIPPool([]netip.Addr{netip.MustParseAddr("10.0.0.1")})

	ts := time.Unix(1000, 0)
	core := New(Config{Users: []*User{user}, Cells: []*RadioCell{cell}, IPPool: pool, Now: fixedClock(ts)})

	log := eventbus.NewMemoryLog()
	if err := core.Tick(context.Background(), log, noopNetwork{}); err != nil {
		t.Fatal(err)
	}

	got, err := log.ScanAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(got), got)
	}
	if got[0].Kind != eventbus.KindLocationReporting || got[0].LdrType != eventbus.LdrEnteringArea {
		t.Fatalf("event 0: expected EnteringArea, got %+v", got[0])
	}
	if got[1].Kind != eventbus.KindPdnConnection || got[1].PdnStatus != eventbus.PdnCreated || got[1].IPv4 != "10.0.0.1" {
		t.Fatalf("event 1: expected PdnConnection Created 10.0.0.1, got %+v", got[1])
	}
	if got[2].Kind != eventbus.KindLocationReporting || got[2].LdrType != eventbus.LdrMotion {
		t.Fatalf("event 2: expected Motion, got %+v", got[2])
	}
}

func TestTickLeaveArea(t *testing.T) {
	cell := NewRadioCell(0, geo.Point{X: 0, Y: 0}, 10)
	user := NewUser(7, geo.Point{X: 1, Y: 1}, 0, 0, 1000)
	pool := NewIPPool([]netip.Addr{netip.MustParseAddr("10.0.0.1")})

	ts := time.Unix(1000, 0)
	core := New(Config{Users: []*User{user}, Cells: []*RadioCell{cell}, IPPool: pool, Now: fixedClock(ts)})
	log := eventbus.NewMemoryLog()
	if err := core.Tick(context.Background(), log, noopNetwork{}); err != nil {
		t.Fatal(err)
	}

	// Force the user out of range before the next tick.
	user.pos = geo.Point{X: 100, Y: 100}

	if err := core.Tick(context.Background(), log, noopNetwork{}); err != nil {
		t.Fatal(err)
	}

	got, err := log.ScanAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// tick1: Entering, Created, Motion (3); tick2: Leaving, Released (2)
	if len(got) != 5 {
		t.Fatalf("expected 5 events total, got %d: %+v", len(got), got)
	}
	leaving := got[3]
	released := got[4]
	if leaving.Kind != eventbus.KindLocationReporting || leaving.LdrType != eventbus.LdrLeavingArea || leaving.CellID != 0 {
		t.Fatalf("expected LeavingArea from cell 0, got %+v", leaving)
	}
	if released.Kind != eventbus.KindPdnConnection || released.PdnStatus != eventbus.PdnReleased || released.IPv4 != "10.0.0.1" {
		t.Fatalf("expected PdnConnection Released 10.0.0.1, got %+v", released)
	}

	if pool.Len() != 1 {
		t.Fatalf("expected ip pool restored to 1 free address, got %d", pool.Len())
	}
	if len(core.orphans) != 1 || core.orphans[0] != 7 {
		t.Fatalf("expected user 7 back in orphans, got %v", core.orphans)
	}
}

func TestTickHandoverIsSilent(t *testing.T) {
	a := NewRadioCell(0, geo.Point{X: 0, Y: 0}, 10)
	b := NewRadioCell(1, geo.Point{X: 15, Y: 0}, 10)
	user := NewUser(7, geo.Point{X: 9, Y: 0}, 0, 0, 1000)
	pool := NewIPPool([]netip.Addr{netip.MustParseAddr("10.0.0.1")})

	ts := time.Unix(1000, 0)
	core := New(Config{Users: []*User{user}, Cells: []*RadioCell{a, b}, IPPool: pool, Now: fixedClock(ts)})
	log := eventbus.NewMemoryLog()
	if err := core.Tick(context.Background(), log, noopNetwork{}); err != nil {
		t.Fatal(err)
	}

	beforeEvents, _ := log.ScanAll(context.Background())
	nBefore := len(beforeEvents)

	user.pos = geo.Point{X: 12, Y: 0} // inside B, outside A

	if err := core.Tick(context.Background(), log, noopNetwork{}); err != nil {
		t.Fatal(err)
	}

	afterEvents, _ := log.ScanAll(context.Background())
	// Handover emits no LeavingArea/EnteringArea/PdnConnection events, only
	// the Motion report for the (now B-owned) session.
	if len(afterEvents)-nBefore != 1 {
		t.Fatalf("expected exactly 1 new event (Motion) across the handover tick, got %d", len(afterEvents)-nBefore)
	}
	if len(a.Sessions()) != 0 {
		t.Fatalf("expected cell A to have no sessions after handover, got %d", len(a.Sessions()))
	}
	if len(b.Sessions()) != 1 || b.Sessions()[0].User.ID != 7 {
		t.Fatalf("expected cell B to own user 7 after handover, got %+v", b.Sessions())
	}
}

func TestTickIPPoolExhaustionIsInvariantViolation(t *testing.T) {
	cell := NewRadioCell(0, geo.Point{X: 0, Y: 0}, 10)
	u1 := NewUser(1, geo.Point{X: 1, Y: 1}, 0, 0, 1000)
	u2 := NewUser(2, geo.Point{X: 2, Y: 2}, 0, 0, 1000)
	pool := NewIPPool([]netip.Addr{netip.MustParseAddr("10.0.0.1")}) // only one address for two users

	core := New(Config{Users: []*User{u1, u2}, Cells: []*RadioCell{cell}, IPPool: pool, Now: fixedClock(time.Unix(0, 0))})
	log := eventbus.NewMemoryLog()
	err := core.Tick(context.Background(), log, noopNetwork{})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}
