package controllerengine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mnedge/emulator/internal/model"
)

type countingClient struct {
	fakeClient
	calls atomic.Int32
}

func (c *countingClient) EdgeDataCenters(ctx context.Context) ([]model.EDC, error) {
	c.calls.Add(1)
	return c.fakeClient.EdgeDataCenters(ctx)
}

func TestRunFixedPeriodStopsOnContextCancel(t *testing.T) {
	client := &countingClient{fakeClient: fakeClient{
		edcs: []model.EDC{{ID: 1}},
		apps: map[uint32][]model.Application{1: {}},
	}}
	c := New(client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx, LoopConfig{Period: 5 * time.Millisecond})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if client.calls.Load() == 0 {
		t.Fatalf("expected at least one RunOnce iteration")
	}
}
