package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migration is one forward-only schema step. Applied versions are recorded
// in skydesk_migrations so Migrate can run on every start.
type migration struct {
	Version int
	Name    string
	Up      string
}

// Migrations is the ordered schema history of the SQLite store.
var Migrations = []migration{
	{
		Version: 1,
		Name:    "create_skydesk_accounts",
		Up: `
CREATE TABLE IF NOT EXISTS skydesk_accounts (
    id         INTEGER PRIMARY KEY,
    balance    INTEGER NOT NULL DEFAULT 0,
    flights    INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_skydesk_accounts_balance ON skydesk_accounts (balance DESC, id);
`,
	},
	{
		Version: 2,
		Name:    "create_skydesk_flights",
		Up: `
CREATE TABLE IF NOT EXISTS skydesk_flights (
    code           TEXT PRIMARY KEY,
    route          TEXT NOT NULL DEFAULT '',
    aircraft       TEXT NOT NULL DEFAULT '',
    departure_time TEXT NOT NULL DEFAULT '',
    departure_date TEXT NOT NULL DEFAULT ''
);
`,
	},
	{
		Version: 3,
		Name:    "create_skydesk_reservations",
		Up: `
CREATE TABLE IF NOT EXISTS skydesk_reservations (
    code           TEXT PRIMARY KEY,
    flight_code    TEXT    NOT NULL,
    route          TEXT    NOT NULL DEFAULT '',
    aircraft       TEXT    NOT NULL DEFAULT '',
    departure_time TEXT    NOT NULL DEFAULT '',
    departure_date TEXT    NOT NULL DEFAULT '',
    cabin          TEXT    NOT NULL DEFAULT '',
    holder_kind    TEXT    NOT NULL DEFAULT '',
    holder_handle  TEXT    NOT NULL DEFAULT '',
    holder_id      INTEGER NOT NULL DEFAULT 0,
    booked_by      INTEGER NOT NULL DEFAULT 0,
    created_at     TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_skydesk_reservations_flight ON skydesk_reservations (flight_code);
CREATE INDEX IF NOT EXISTS idx_skydesk_reservations_booked_by ON skydesk_reservations (booked_by);
`,
	},
	{
		Version: 4,
		Name:    "create_skydesk_tickets",
		Up: `
CREATE TABLE IF NOT EXISTS skydesk_tickets (
    id         TEXT PRIMARY KEY,
    number     TEXT    NOT NULL UNIQUE,
    category   TEXT    NOT NULL,
    title      TEXT    NOT NULL DEFAULT '',
    opened_by  INTEGER NOT NULL DEFAULT 0,
    channel_id INTEGER NOT NULL UNIQUE,
    status     TEXT    NOT NULL DEFAULT 'open',
    transcript TEXT    NOT NULL DEFAULT '',
    closed_by  INTEGER NOT NULL DEFAULT 0,
    closed_at  TEXT,
    created_at TEXT    NOT NULL DEFAULT '',
    updated_at TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_skydesk_tickets_category ON skydesk_tickets (category);
`,
	},
	{
		Version: 5,
		Name:    "create_skydesk_announcements",
		Up: `
CREATE TABLE IF NOT EXISTS skydesk_announcements (
    id                 TEXT PRIMARY KEY,
    message_id         INTEGER NOT NULL UNIQUE,
    channel_id         INTEGER NOT NULL DEFAULT 0,
    flight_number      TEXT    NOT NULL,
    departure_airport  TEXT    NOT NULL DEFAULT '',
    departure_time     TEXT    NOT NULL DEFAULT '',
    departure_gate     TEXT    NOT NULL DEFAULT '',
    departure_terminal TEXT    NOT NULL DEFAULT '',
    arrival_airport    TEXT    NOT NULL DEFAULT '',
    arrival_time       TEXT    NOT NULL DEFAULT '',
    arrival_gate       TEXT    NOT NULL DEFAULT '',
    date               TEXT    NOT NULL DEFAULT '',
    meal_service       TEXT    NOT NULL DEFAULT '',
    host               TEXT    NOT NULL DEFAULT '',
    alerts             TEXT    NOT NULL DEFAULT '',
    server_link        TEXT    NOT NULL DEFAULT '',
    status             TEXT    NOT NULL DEFAULT '',
    posted_by          INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT    NOT NULL DEFAULT '',
    updated_at         TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_skydesk_announcements_flight ON skydesk_announcements (flight_number);
`,
	},
}

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS skydesk_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL
)`

// migrate applies every migration newer than the recorded version, each in
// its own transaction.
func migrate(ctx context.Context, db *sqlx.DB, migrations []migration) (int, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM skydesk_migrations`); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return applied, fmt.Errorf("%s (v%d): %w", m.Name, m.Version, err)
		}
		applied++
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *sqlx.DB, m migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO skydesk_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.Version, m.Name, formatTime(now()),
	); err != nil {
		return err
	}
	return tx.Commit()
}
