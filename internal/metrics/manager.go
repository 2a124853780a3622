// Package metrics holds ambient, in-memory counters for the emulator and
// controller processes, exposed via GET /metrics/summary. It sits outside
// the core domain model; its atomic-counter style is grounded on the
// teacher's own metrics.Collector.
package metrics

import "sync/atomic"

// Manager holds hot-path atomic counters. All fields are updated with
// atomic operations for lock-free performance under MobilityCore's writer
// lock.
type Manager struct {
	ticks          atomic.Int64
	tickErrors     atomic.Int64
	tickNanosTotal atomic.Int64

	eventsByKind map[string]*atomic.Int64 // fixed at construction, keys never added after

	publishSuccess atomic.Int64
	publishFailure atomic.Int64

	controllerMoves atomic.Int64
	controllerSkips atomic.Int64
}

// Known event kinds, fixed at construction time so eventsByKind access
// needs no lock (spec's two event kinds, §3).
var knownEventKinds = []string{"PdnConnection", "LocationReporting"}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	m := &Manager{eventsByKind: make(map[string]*atomic.Int64, len(knownEventKinds))}
	for _, kind := range knownEventKinds {
		m.eventsByKind[kind] = new(atomic.Int64)
	}
	return m
}

// RecordTick records the outcome and duration of one MobilityCore.Tick call.
func (m *Manager) RecordTick(ok bool, durationNanos int64) {
	m.ticks.Add(1)
	if !ok {
		m.tickErrors.Add(1)
	}
	m.tickNanosTotal.Add(durationNanos)
}

// RecordEvent increments the per-kind event counter. Unknown kinds are
// silently dropped; the only kinds in this system are the two above.
func (m *Manager) RecordEvent(kind string) {
	if c, ok := m.eventsByKind[kind]; ok {
		c.Add(1)
	}
}

// RecordPublish records one ExposureBus.Publish outcome.
func (m *Manager) RecordPublish(ok bool) {
	if ok {
		m.publishSuccess.Add(1)
	} else {
		m.publishFailure.Add(1)
	}
}

// RecordControllerIteration records one PlacementController loop iteration.
func (m *Manager) RecordControllerIteration(moved bool) {
	if moved {
		m.controllerMoves.Add(1)
	} else {
		m.controllerSkips.Add(1)
	}
}

// Summary is a point-in-time snapshot of every counter.
type Summary struct {
	Ticks          int64            `json:"ticks"`
	TickErrors     int64            `json:"tick_errors"`
	TickNanosTotal int64            `json:"tick_nanos_total"`
	EventsByKind   map[string]int64 `json:"events_by_kind"`
	PublishSuccess int64            `json:"publish_success"`
	PublishFailure int64            `json:"publish_failure"`
	ControllerMoves int64           `json:"controller_moves"`
	ControllerSkips int64           `json:"controller_skips"`
}

// Summary returns a snapshot suitable for JSON serialisation.
func (m *Manager) Summary() Summary {
	events := make(map[string]int64, len(m.eventsByKind))
	for kind, c := range m.eventsByKind {
		events[kind] = c.Load()
	}
	return Summary{
		Ticks:           m.ticks.Load(),
		TickErrors:      m.tickErrors.Load(),
		TickNanosTotal:  m.tickNanosTotal.Load(),
		EventsByKind:    events,
		PublishSuccess:  m.publishSuccess.Load(),
		PublishFailure:  m.publishFailure.Load(),
		ControllerMoves: m.controllerMoves.Load(),
		ControllerSkips: m.controllerSkips.Load(),
	}
}
