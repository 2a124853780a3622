package exposure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/model"
)

func TestPublishDedupAtMostOncePerSubscriber(t *testing.T) {
	var received int32
	var lastBatch []model.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []model.Event
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			t.Fatal(err)
		}
		lastBatch = batch
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := eventbus.NewMemoryLog()
	ts := time.Unix(1000, 0)
	if err := log.AppendMany(context.Background(), []eventbus.Event{
		eventbus.NewPdnConnection(7, eventbus.PdnCreated, "10.0.0.1", ts),
	}); err != nil {
		t.Fatal(err)
	}

	bus := New(srv.Client())
	sub := NewSubscriber(srv.URL, eventbus.KindPdnConnection, []uint32{7})
	if _, err := bus.AddSubscriber(sub); err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(context.Background(), log); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", received)
	}
	if len(lastBatch) != 1 {
		t.Fatalf("expected 1 event in batch, got %d", len(lastBatch))
	}

	// Second publish with no new events: must not re-deliver.
	if err := bus.Publish(context.Background(), log); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&received) != 1 {
		t.Fatalf("expected no second delivery, got %d total calls", received)
	}
}

func TestPublishFiltersByKindAndUserID(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := eventbus.NewMemoryLog()
	ts := time.Unix(1000, 0)
	if err := log.AppendMany(context.Background(), []eventbus.Event{
		eventbus.NewPdnConnection(7, eventbus.PdnCreated, "10.0.0.1", ts),          // wrong user
		eventbus.NewLocationReporting(8, 0, geo.Point{}, eventbus.LdrMotion, ts), // wrong kind
	}); err != nil {
		t.Fatal(err)
	}

	bus := New(srv.Client())
	sub := NewSubscriber(srv.URL, eventbus.KindPdnConnection, []uint32{8})
	if _, err := bus.AddSubscriber(sub); err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(context.Background(), log); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&received) != 0 {
		t.Fatalf("expected no delivery for non-matching events, got %d", received)
	}
}

func TestPublishFailureLeavesDeliveredUntouched(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := eventbus.NewMemoryLog()
	ts := time.Unix(1000, 0)
	if err := log.AppendMany(context.Background(), []eventbus.Event{
		eventbus.NewPdnConnection(7, eventbus.PdnCreated, "10.0.0.1", ts),
	}); err != nil {
		t.Fatal(err)
	}

	bus := New(srv.Client())
	sub := NewSubscriber(srv.URL, eventbus.KindPdnConnection, []uint32{7})
	if _, err := bus.AddSubscriber(sub); err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(context.Background(), log); err != nil {
		t.Fatal(err) // Publish itself never errors on a subscriber delivery failure
	}
	if err := bus.Publish(context.Background(), log); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected a retry on the next publish after a failed delivery, got %d calls", calls)
	}
}
