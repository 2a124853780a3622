package exposure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/maypok86/otter"

	"github.com/mnedge/emulator/internal/eventbus"
	"github.com/mnedge/emulator/internal/model"
)

// deliveredCacheSize bounds the per-subscriber fingerprint dedup cache.
// Delivered event sets grow monotonically in principle, but an emulator
// run is expected to stay well under this many distinct events per
// subscriber; eviction of the oldest entries is an acceptable tradeoff
// against unbounded memory growth.
const deliveredCacheSize = 100_000

// ErrDeliveryFailed marks a subscriber POST that returned a non-2xx status
// or a transport error. It is never surfaced to the REST client that
// triggered publish; delivered is left untouched so the event is retried
// on the next call.
var ErrDeliveryFailed = fmt.Errorf("exposure: delivery failed")

// Bus is the ExposureBus. AddSubscriber and Publish's filter pass take the
// exclusive lock, reads take the shared lock. Publish marks events
// delivered in the (concurrency-safe) otter cache after releasing the lock.
type Bus struct {
	mu sync.RWMutex

	subs      map[string]*Subscriber
	order     []string
	delivered map[string]otter.Cache[string, struct{}]

	client *http.Client
}

// New builds an empty Bus that notifies subscribers using client.
func New(client *http.Client) *Bus {
	return &Bus{
		subs:      make(map[string]*Subscriber),
		delivered: make(map[string]otter.Cache[string, struct{}]),
		client:    client,
	}
}

// AddSubscriber registers sub and returns its assigned id.
func (b *Bus) AddSubscriber(sub *Subscriber) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cache, err := otter.MustBuilder[string, struct{}](deliveredCacheSize).Build()
	if err != nil {
		return "", fmt.Errorf("exposure: add subscriber: build delivered cache: %w", err)
	}

	b.subs[sub.ID] = sub
	b.order = append(b.order, sub.ID)
	b.delivered[sub.ID] = cache
	return sub.ID, nil
}

// Subscribers returns the registered subscribers in registration order.
func (b *Bus) Subscribers() []*Subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Subscriber, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.subs[id])
	}
	return out
}

// deliveryPlan is one subscriber's computed filter result: the events it
// should receive and the cache to mark them delivered in once sent.
type deliveryPlan struct {
	sub    *Subscriber
	cache  otter.Cache[string, struct{}]
	toSend []eventbus.Event
}

// Publish reads every event from log, and for each subscriber computes the
// set of events matching (kind, user_ids) not yet delivered, POSTs them as
// a JSON array to the subscriber's endpoint, and on 2xx response marks them
// delivered. A failed delivery leaves that subscriber's delivered set
// untouched so the event is retried on the next Publish call. There is no
// ordering guarantee across subscribers or within a batch.
//
// The filter runs under the write lock; the outbound POSTs do not. The
// lock only ever guards the subs/order/delivered bookkeeping, never an
// HTTP round trip.
func (b *Bus) Publish(ctx context.Context, eventLog eventbus.Log) error {
	events, err := eventLog.ScanAll(ctx)
	if err != nil {
		return fmt.Errorf("exposure: publish: scan events: %w", err)
	}

	b.mu.Lock()
	plans := make([]deliveryPlan, 0, len(b.order))
	for _, id := range b.order {
		sub := b.subs[id]
		cache := b.delivered[id]

		var toSend []eventbus.Event
		for _, e := range events {
			if e.Kind != sub.Kind || !sub.wantsUser(e.UserID) {
				continue
			}
			if _, alreadySent := cache.Get(e.FingerprintHex()); alreadySent {
				continue
			}
			toSend = append(toSend, e)
		}
		if len(toSend) > 0 {
			plans = append(plans, deliveryPlan{sub: sub, cache: cache, toSend: toSend})
		}
	}
	b.mu.Unlock()

	for _, p := range plans {
		if err := b.notify(ctx, p.sub, p.toSend); err != nil {
			log.Printf("[exposure] subscriber %s: %v", p.sub.ID, err)
			continue // delivery failed: not surfaced, delivered left untouched
		}
		for _, e := range p.toSend {
			p.cache.Set(e.FingerprintHex(), struct{}{})
		}
	}
	return nil
}

func (b *Bus) notify(ctx context.Context, sub *Subscriber, events []eventbus.Event) error {
	wire := make([]model.Event, len(events))
	for i, e := range events {
		wire[i] = e.ToWire()
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("%w: marshal body: %v", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.NotifyEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: subscriber %s returned status %d", ErrDeliveryFailed, sub.ID, resp.StatusCode)
	}
	return nil
}
