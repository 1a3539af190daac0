// Package repository persists receipt scans and fuel entries in SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS receipt_scans (
	id           TEXT PRIMARY KEY,
	engine       TEXT NOT NULL,
	source       TEXT NOT NULL,
	confidence   INTEGER NOT NULL,
	qr_payload   TEXT NOT NULL DEFAULT '',
	receipt_json TEXT NOT NULL,
	processed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fuel_entries (
	id              TEXT PRIMARY KEY,
	vehicle_id      TEXT NOT NULL,
	date            TEXT NOT NULL,
	odometer        REAL NOT NULL,
	liters          REAL NOT NULL,
	total_price     REAL NOT NULL,
	price_per_liter REAL NOT NULL,
	fuel_type       TEXT NOT NULL,
	is_full_tank    INTEGER NOT NULL DEFAULT 0,
	distance        REAL,
	efficiency      REAL,
	notes           TEXT NOT NULL DEFAULT '',
	scan_id         TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fuel_entries_vehicle ON fuel_entries (vehicle_id, date);
`

// timeLayout is fixed width so stored UTC timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens the database at path (":memory:" for tests) and applies the
// schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored time %q: %w", s, err)
	}
	return t, nil
}
