package eventbus

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

const eventsMigrationsPath = "migrations/events"

//go:embed migrations/events/*.sql
var migrationsFS embed.FS

// SQLiteLog is the default Log implementation, backed by a single SQLite
// database file. SQLite itself serialises writers, so SQLiteLog needs no
// lock of its own.
type SQLiteLog struct {
	db *sql.DB
}

// OpenSQLiteLog opens (creating if necessary) the events database at path
// and applies pending migrations.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventbus: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: one writer at a time, avoids SQLITE_BUSY

	if err := migrateEventsDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteLog{db: db}, nil
}

func migrateEventsDB(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, eventsMigrationsPath)
	if err != nil {
		return fmt.Errorf("eventbus: migrate: init source: %w", err)
	}
	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("eventbus: migrate: init db driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("eventbus: migrate: init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("eventbus: migrate: up: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

// AppendMany implements Log.
func (l *SQLiteLog) AppendMany(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("eventbus: append: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
			(fingerprint, kind, user_id, timestamp_ns, pdn_status, ipv4, cell_id, geo_x, geo_y, ldr_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("eventbus: append: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.FingerprintHex(), string(e.Kind), e.UserID, e.Timestamp.UnixNano(),
			string(e.PdnStatus), e.IPv4, e.CellID, e.Geo.X, e.Geo.Y, string(e.LdrType),
		)
		if err != nil {
			return fmt.Errorf("eventbus: append: exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("eventbus: append: commit: %w", err)
	}
	return nil
}

// ScanAll implements Log.
func (l *SQLiteLog) ScanAll(ctx context.Context) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT kind, user_id, timestamp_ns, pdn_status, ipv4, cell_id, geo_x, geo_y, ldr_type
		FROM events
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("eventbus: scan: query: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var kind, pdnStatus, ldrType string
		var tsNs int64
		if err := rows.Scan(&kind, &e.UserID, &tsNs, &pdnStatus, &e.IPv4, &e.CellID, &e.Geo.X, &e.Geo.Y, &ldrType); err != nil {
			return nil, fmt.Errorf("eventbus: scan: row: %w", err)
		}
		e.Kind = Kind(kind)
		e.PdnStatus = PdnStatus(pdnStatus)
		e.LdrType = LdrType(ldrType)
		e.Timestamp = time.Unix(0, tsNs).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventbus: scan: rows: %w", err)
	}
	return out, nil
}
