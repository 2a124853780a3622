// Package controllerengine implements the PlacementController: a periodic
// loop that polls the Emulator's control-plane API, diffs two consecutive
// application-usage snapshots, and relocates applications towards the
// weighted centroid of the users who drove that usage.
package controllerengine

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/mnedge/emulator/internal/geo"
	"github.com/mnedge/emulator/internal/metrics"
	"github.com/mnedge/emulator/internal/model"
)

// EmulatorClient is the read/write surface the PlacementController needs
// from the Emulator, reached over HTTP in production (see
// NewHTTPEmulatorClient) and faked directly in tests.
type EmulatorClient interface {
	EdgeDataCenters(ctx context.Context) ([]model.EDC, error)
	Applications(ctx context.Context, edcID uint32) ([]model.Application, error)
	Events(ctx context.Context) ([]model.Event, error)
	AddApplication(ctx context.Context, edcID, appID uint32) error
	RemoveApplication(ctx context.Context, edcID, appID uint32) error
}

// appLocation is one application's hosting EDC and access log as observed
// in a single snapshot.
type appLocation struct {
	edcID uint32
	app   model.Application
}

// Move records one issued relocation, kept in a bounded in-memory ring
// buffer and exposed at GET /controller/history.
type Move struct {
	AppID   uint32    `json:"app_id"`
	FromEDC uint32    `json:"from_edc"`
	ToEDC   uint32    `json:"to_edc"`
	At      time.Time `json:"at"`
}

const defaultHistoryCap = 256

// Controller runs the placement loop. It holds no lock of its own beyond
// what protects its baseline snapshot and move history — all domain state
// lives behind the EmulatorClient, one HTTP hop away.
type Controller struct {
	client  EmulatorClient
	metrics *metrics.Manager
	now     func() time.Time

	mu       sync.Mutex
	baseline map[uint32]appLocation // nil until the first successful poll

	historyMu  sync.Mutex
	history    []Move
	historyCap int
}

// New builds a Controller. A nil m disables metrics recording.
func New(client EmulatorClient, m *metrics.Manager) *Controller {
	return &Controller{
		client:     client,
		metrics:    m,
		now:        time.Now,
		historyCap: defaultHistoryCap,
	}
}

// History returns a snapshot of the most recent moves, newest first.
func (c *Controller) History() []Move {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()
	out := make([]Move, len(c.history))
	for i, m := range c.history {
		out[len(c.history)-1-i] = m
	}
	return out
}

func (c *Controller) recordMove(m Move) {
	c.historyMu.Lock()
	defer c.historyMu.Unlock()
	c.history = append(c.history, m)
	if len(c.history) > c.historyCap {
		c.history = c.history[len(c.history)-c.historyCap:]
	}
}

// RunOnce runs exactly one iteration of the placement loop; the sleep
// between iterations is the caller's concern, see Run. Any upstream HTTP
// failure is logged and the iteration is skipped without error — an
// unreachable Emulator never aborts the loop.
func (c *Controller) RunOnce(ctx context.Context) {
	edcs, err := c.client.EdgeDataCenters(ctx)
	if err != nil {
		log.Printf("[controller] fetch edge data centers: %v", err)
		c.recordIteration(false)
		return
	}

	current := make(map[uint32]appLocation)
	for _, edc := range edcs {
		apps, err := c.client.Applications(ctx, edc.ID)
		if err != nil {
			log.Printf("[controller] fetch applications for edc %d: %v", edc.ID, err)
			c.recordIteration(false)
			return
		}
		for _, app := range apps {
			current[app.ID] = appLocation{edcID: edc.ID, app: app}
		}
	}

	c.mu.Lock()
	baseline := c.baseline
	c.mu.Unlock()

	if baseline == nil {
		// First boot: A0 == A1, so every diff would be empty anyway.
		// Just establish the baseline and wait for the next iteration.
		c.mu.Lock()
		c.baseline = current
		c.mu.Unlock()
		c.recordIteration(false)
		return
	}

	events, err := c.client.Events(ctx)
	if err != nil {
		log.Printf("[controller] fetch events: %v", err)
		c.recordIteration(false)
		return
	}

	edcIDs := make([]uint32, 0, len(edcs))
	edcPoints := make([]geo.Point, 0, len(edcs))
	for _, e := range edcs {
		edcIDs = append(edcIDs, e.ID)
		edcPoints = append(edcPoints, geo.Point{X: e.X, Y: e.Y})
	}

	moved := false
	for appID, curLoc := range current {
		baseLoc, ok := baseline[appID]
		if !ok {
			continue // not present in the baseline: mild cross-call inconsistency, ignored
		}

		diff := diffApplication(curLoc.app, baseLoc.app)
		samples := weightedSamples(diff, events)
		if len(samples) == 0 {
			continue
		}

		centroid, ok := geo.WeightedCentroid(samples)
		if !ok {
			continue
		}
		idx := geo.Nearest(centroid, edcPoints)
		if idx < 0 {
			continue
		}
		target := edcIDs[idx]
		if target == curLoc.edcID {
			continue
		}

		if c.issueMove(ctx, appID, curLoc.edcID, target) {
			moved = true
		}
	}

	c.mu.Lock()
	c.baseline = current
	c.mu.Unlock()
	c.recordIteration(moved)
}

func (c *Controller) recordIteration(moved bool) {
	if c.metrics != nil {
		c.metrics.RecordControllerIteration(moved)
	}
}

// issueMove performs the best-effort, non-transactional remove-then-add
// and appends to the move history on success.
func (c *Controller) issueMove(ctx context.Context, appID, fromEDC, toEDC uint32) bool {
	if err := c.client.RemoveApplication(ctx, fromEDC, appID); err != nil {
		log.Printf("[controller] move application %d: remove from edc %d: %v", appID, fromEDC, err)
		return false
	}
	if err := c.client.AddApplication(ctx, toEDC, appID); err != nil {
		log.Printf("[controller] move application %d: add to edc %d (already removed from %d): %v", appID, toEDC, fromEDC, err)
		return false
	}
	log.Printf("[controller] moved application %d: edc %d -> %d", appID, fromEDC, toEDC)
	c.recordMove(Move{AppID: appID, FromEDC: fromEDC, ToEDC: toEDC, At: c.now()})
	return true
}

// diffApplication returns, per ip, the timestamps present in self but
// absent in other. Duplicate timestamps are matched multiset-wise (one
// occurrence in other cancels out one matching occurrence in self) rather
// than by set membership, so a repeated access at the same second isn't
// silently dropped from the diff. The controller only ever sees
// Applications as JSON snapshots fetched over HTTP, never a process-local
// domain type, so this operates directly on the wire DTO.
func diffApplication(self, other model.Application) model.Application {
	result := model.Application{ID: self.ID, Accesses: make(map[string][]int64, len(self.Accesses))}
	for ip, selfList := range self.Accesses {
		otherSet := make(map[int64]int, len(other.Accesses[ip]))
		for _, ts := range other.Accesses[ip] {
			otherSet[ts]++
		}
		diffList := []int64{}
		for _, ts := range selfList {
			if otherSet[ts] > 0 {
				otherSet[ts]--
				continue
			}
			diffList = append(diffList, ts)
		}
		result.Accesses[ip] = diffList
	}
	return result
}

// weightedSamples computes, for every ip with a non-empty diff, the user
// whose most recent PdnConnection(Created, ipv4=ip) precedes (and is
// closest to) the latest diff timestamp for that ip, then takes that
// user's latest LocationReporting point.
func weightedSamples(diff model.Application, events []model.Event) []geo.WeightedSample {
	var samples []geo.WeightedSample
	for ip, timestamps := range diff.Accesses {
		if len(timestamps) == 0 {
			continue
		}
		maxTs := timestamps[0]
		for _, ts := range timestamps[1:] {
			if ts > maxTs {
				maxTs = ts
			}
		}
		beforeNanos := maxTs * int64(time.Second)

		userID, ok := findUserByRecentPdnCreate(events, ip, beforeNanos)
		if !ok {
			continue
		}
		point, ok := latestLocation(events, userID)
		if !ok {
			continue
		}
		samples = append(samples, geo.WeightedSample{Point: point, Weight: float64(len(timestamps))})
	}
	return samples
}

func findUserByRecentPdnCreate(events []model.Event, ip string, beforeNanos int64) (uint32, bool) {
	var bestUser uint32
	bestTs := int64(math.MinInt64)
	found := false
	for _, e := range events {
		if e.Kind != model.EventKindPdnConnection || e.Payload.Status != model.PdnStatusCreated || e.Payload.IPv4 != ip {
			continue
		}
		if e.TimestampNs < beforeNanos && e.TimestampNs > bestTs {
			bestTs = e.TimestampNs
			bestUser = e.UserID
			found = true
		}
	}
	return bestUser, found
}

func latestLocation(events []model.Event, userID uint32) (geo.Point, bool) {
	var best geo.Point
	bestTs := int64(math.MinInt64)
	found := false
	for _, e := range events {
		if e.Kind != model.EventKindLocationReporting || e.UserID != userID {
			continue
		}
		if e.TimestampNs > bestTs {
			bestTs = e.TimestampNs
			best = geo.Point{X: e.Payload.GeoX, Y: e.Payload.GeoY}
			found = true
		}
	}
	return best, found
}
