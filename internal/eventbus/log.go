package eventbus

import "context"

// Log is the abstract event log: append-many plus scan-all. An
// implementation MAY support time-range queries, but callers must function
// correctly with only these two operations — the controller re-filters in
// memory.
type Log interface {
	// AppendMany appends events in order. All events from a single tick
	// phase are appended together; the caller must never mix phases in
	// one call.
	AppendMany(ctx context.Context, events []Event) error

	// ScanAll returns every event currently in the log, in no particular
	// order.
	ScanAll(ctx context.Context) ([]Event, error)
}
