package edge

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/mobility"
)

// attachedSession builds a PduSession bound to a fresh user and cell,
// exercising the exported mobility API the same way MobilityCore would.
func attachedSession(t *testing.T, userID uint32, pos geo.Point, ip string) *mobility.PduSession {
	t.Helper()
	cell := mobility.NewRadioCell(0, pos, 1) // radius 1: user at pos is always contained
	user := mobility.NewUser(userID, pos, 0, 0, 1000)
	sess := &mobility.PduSession{User: user, IP: netip.MustParseAddr(ip)}
	cell.Attach(sess)
	return sess
}

func TestNetworkUseApplicationComputesDelay(t *testing.T) {
	edc := NewDataCenter(1, "edc-1", geo.Point{X: 10, Y: 0})
	if err := edc.AddApplication(3); err != nil {
		t.Fatal(err)
	}
	net := NewNetwork([]*DataCenter{edc})

	sess := attachedSession(t, 7, geo.Point{X: 0, Y: 0}, "10.0.0.1")

	if err := net.UseApplication(sess, 3, geo.Point{X: 0, Y: 0}); err != nil {
		t.Fatal(err)
	}

	entries := net.NetworkLog()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	wantDelay := 10.0*delayPerMeter + processingTime.Seconds()
	if entries[0].TimeUsedS != wantDelay {
		t.Fatalf("expected delay %f, got %f", wantDelay, entries[0].TimeUsedS)
	}
	if got, _ := net.TotalUses(1, 3); got != 1 {
		t.Fatalf("expected total uses 1, got %d", got)
	}
}

func TestNetworkUseApplicationNotFound(t *testing.T) {
	net := NewNetwork(nil)
	sess := attachedSession(t, 7, geo.Point{X: 0, Y: 0}, "10.0.0.1")

	err := net.UseApplication(sess, 99, geo.Point{X: 0, Y: 0})
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected ErrApplicationNotFound, got %v", err)
	}
	if len(net.NetworkLog()) != 0 {
		t.Fatalf("expected no state mutation on ApplicationNotFound")
	}
}
