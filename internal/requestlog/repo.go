// Package requestlog is a rolling SQLite-backed access log of control-plane
// API calls, simpler than a production audit trail: one table, trimmed to
// the most recent N rows on an interval, grounded on the teacher's
// internal/requestlog rolling-database design but without its multi-file
// rotation (this emulator's request volume never approaches the scale
// that justifies it).
package requestlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded API call.
type Entry struct {
	TimestampNs int64
	Method      string
	Path        string
	Status      int
	DurationNs  int64
}

// Repo manages a single SQLite-backed request log.
type Repo struct {
	db          *sql.DB
	retainCount int
}

// Open opens (creating if necessary) the request log database at path and
// applies its DDL.
func Open(path string, retainCount int) (*Repo, error) {
	if retainCount <= 0 {
		retainCount = 10_000
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("requestlog: open %s: %w", path, err)
	}
	if _, err := db.Exec(createTableDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("requestlog: init schema: %w", err)
	}
	return &Repo{db: db, retainCount: retainCount}, nil
}

const createTableDDL = `
CREATE TABLE IF NOT EXISTS request_log (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp_ns INTEGER NOT NULL,
    method       TEXT NOT NULL,
    path         TEXT NOT NULL,
    status       INTEGER NOT NULL,
    duration_ns  INTEGER NOT NULL
);
`

// Close releases the underlying database handle.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Record appends one entry.
func (r *Repo) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO request_log (timestamp_ns, method, path, status, duration_ns) VALUES (?, ?, ?, ?, ?)`,
		e.TimestampNs, e.Method, e.Path, e.Status, e.DurationNs,
	)
	if err != nil {
		return fmt.Errorf("requestlog: record: %w", err)
	}
	return nil
}

// Trim deletes every row except the most recent retainCount, by id. Callers
// run this on a periodic interval, not per-request.
func (r *Repo) Trim(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM request_log
		WHERE id NOT IN (
			SELECT id FROM request_log ORDER BY id DESC LIMIT ?
		)
	`, r.retainCount)
	if err != nil {
		return fmt.Errorf("requestlog: trim: %w", err)
	}
	return nil
}

// Recent returns the most recent limit entries, newest first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp_ns, method, path, status, duration_ns FROM request_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("requestlog: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TimestampNs, &e.Method, &e.Path, &e.Status, &e.DurationNs); err != nil {
			return nil, fmt.Errorf("requestlog: recent: row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TimeOf converts an Entry's TimestampNs to a time.Time for display.
func (e Entry) TimeOf() time.Time {
	return time.Unix(0, e.TimestampNs).UTC()
}
