package eventbus

import (
	"testing"
	"time"

	"github.com/mnedge/emulator/internal/geo"
)

func TestFingerprintStableAcrossEqualEvents(t *testing.T) {
	ts := time.Unix(1000, 0)
	a := NewPdnConnection(7, PdnCreated, "10.0.0.1", ts)
	b := NewPdnConnection(7, PdnCreated, "10.0.0.1", ts)
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("expected equal fingerprints for equal events")
	}
}

func TestFingerprintIgnoresSubMillisecondNoise(t *testing.T) {
	a := NewPdnConnection(7, PdnCreated, "10.0.0.1", time.Unix(1000, 0))
	b := NewPdnConnection(7, PdnCreated, "10.0.0.1", time.Unix(1000, 500)) // 500ns later
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("expected equal fingerprints within the same millisecond")
	}
}

func TestFingerprintDiffersOnDistinctFields(t *testing.T) {
	ts := time.Unix(1000, 0)
	a := NewPdnConnection(7, PdnCreated, "10.0.0.1", ts)
	b := NewPdnConnection(7, PdnReleased, "10.0.0.1", ts)
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("expected different fingerprints for different PdnStatus")
	}
}

func TestToWireLocationReporting(t *testing.T) {
	e := NewLocationReporting(3, 9, geo.Point{X: 1, Y: 2}, LdrMotion, time.Unix(5, 0))
	w := e.ToWire()
	if w.Kind != string(KindLocationReporting) {
		t.Fatalf("expected kind %s, got %s", KindLocationReporting, w.Kind)
	}
	if w.Payload.CellID != 9 || w.Payload.GeoX != 1 || w.Payload.GeoY != 2 || w.Payload.LdrType != string(LdrMotion) {
		t.Fatalf("unexpected payload: %+v", w.Payload)
	}
}
