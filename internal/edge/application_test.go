package edge

import (
	"testing"
	"time"
)

func TestApplicationRecordAndTotalUses(t *testing.T) {
	app := NewApplication(1)
	t0 := time.Unix(100, 0)
	app.RecordUse("10.0.0.1", t0)
	app.RecordUse("10.0.0.1", t0.Add(time.Second))
	app.RecordUse("10.0.0.2", t0.Add(2*time.Second))

	if got := app.TotalUses(); got != 3 {
		t.Fatalf("expected 3 total uses, got %d", got)
	}
}
