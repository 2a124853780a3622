package metrics

import (
	"context"

	"github.com/mnedge/emulator/internal/eventbus"
)

// instrumentedLog wraps an eventbus.Log and feeds every appended event's
// kind into a Manager's per-kind counters. It changes nothing about the
// wrapped log's behaviour or errors.
type instrumentedLog struct {
	eventbus.Log
	manager *Manager
}

// InstrumentLog wraps log so every event it appends is also counted by m.
// A nil m disables counting (InstrumentLog returns log unchanged).
func InstrumentLog(log eventbus.Log, m *Manager) eventbus.Log {
	if m == nil {
		return log
	}
	return &instrumentedLog{Log: log, manager: m}
}

func (l *instrumentedLog) AppendMany(ctx context.Context, events []eventbus.Event) error {
	if err := l.Log.AppendMany(ctx, events); err != nil {
		return err
	}
	for _, e := range events {
		l.manager.RecordEvent(string(e.Kind))
	}
	return nil
}
