package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/mnedge/emulator/internal/geo"
)

func newTestSQLiteLog(t *testing.T) *SQLiteLog {
	t.Helper()
	dir := t.TempDir()
	log, err := OpenSQLiteLog(dir + "/events.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestSQLiteLogAppendAndScan(t *testing.T) {
	log := newTestSQLiteLog(t)
	ctx := context.Background()

	ts := time.Unix(1000, 0)
	batch := []Event{
		NewLocationReporting(7, 0, geo.Point{X: 1, Y: 1}, LdrEnteringArea, ts),
		NewPdnConnection(7, PdnCreated, "10.0.0.1", ts),
	}
	if err := log.AppendMany(ctx, batch); err != nil {
		t.Fatal(err)
	}

	got, err := log.ScanAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != KindLocationReporting || got[1].Kind != KindPdnConnection {
		t.Fatalf("expected insertion order preserved, got %+v", got)
	}
}

func TestSQLiteLogAppendManyEmptyIsNoop(t *testing.T) {
	log := newTestSQLiteLog(t)
	ctx := context.Background()
	if err := log.AppendMany(ctx, nil); err != nil {
		t.Fatal(err)
	}
	got, err := log.ScanAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no events, got %d", len(got))
	}
}
