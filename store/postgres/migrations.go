package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migration is one forward-only schema step, recorded in skydesk_migrations.
type migration struct {
	Version int
	Name    string
	Up      string
}

// Migrations is the ordered schema history of the PostgreSQL store.
var Migrations = []migration{
	{
		Version: 1,
		Name:    "create_skydesk_accounts",
		Up: `
CREATE TABLE IF NOT EXISTS skydesk_accounts (
    id         BIGINT PRIMARY KEY,
    balance    BIGINT NOT NULL DEFAULT 0,
    flights    BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    seq            BIGSERIAL,
    flight_code    TEXT   NOT NULL,
    route          TEXT   NOT NULL DEFAULT '',
    aircraft       TEXT   NOT NULL DEFAULT '',
    departure_time TEXT   NOT NULL DEFAULT '',
    departure_date TEXT   NOT NULL DEFAULT '',
    cabin          TEXT   NOT NULL DEFAULT '',
    holder_kind    TEXT   NOT NULL DEFAULT '',
    holder_handle  TEXT   NOT NULL DEFAULT '',
    holder_id      BIGINT NOT NULL DEFAULT 0,
    booked_by      BIGINT NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    seq        BIGSERIAL,
    number     TEXT   NOT NULL UNIQUE,
    category   TEXT   NOT NULL,
    title      TEXT   NOT NULL DEFAULT '',
    opened_by  BIGINT NOT NULL DEFAULT 0,
    channel_id BIGINT NOT NULL UNIQUE,
    status     TEXT   NOT NULL DEFAULT 'open',
    transcript TEXT   NOT NULL DEFAULT '',
    closed_by  BIGINT NOT NULL DEFAULT 0,
    closed_at  TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    seq                BIGSERIAL,
    message_id         BIGINT NOT NULL UNIQUE,
    channel_id         BIGINT NOT NULL DEFAULT 0,
    flight_number      TEXT   NOT NULL,
    departure_airport  TEXT   NOT NULL DEFAULT '',
    departure_time     TEXT   NOT NULL DEFAULT '',
    departure_gate     TEXT   NOT NULL DEFAULT '',
    departure_terminal TEXT   NOT NULL DEFAULT '',
    arrival_airport    TEXT   NOT NULL DEFAULT '',
    arrival_time       TEXT   NOT NULL DEFAULT '',
    arrival_gate       TEXT   NOT NULL DEFAULT '',
    date               TEXT   NOT NULL DEFAULT '',
    meal_service       TEXT   NOT NULL DEFAULT '',
    host               TEXT   NOT NULL DEFAULT '',
    alerts             TEXT   NOT NULL DEFAULT '',
    server_link        TEXT   NOT NULL DEFAULT '',
    status             TEXT   NOT NULL DEFAULT '',
    posted_by          BIGINT NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_skydesk_announcements_flight ON skydesk_announcements (flight_number);
`,
	},
}

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS skydesk_migrations (
    version    INT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL
)`

// migrate applies every migration newer than the recorded version. A
// transaction-scoped advisory lock keeps concurrent starters from racing.
func migrate(ctx context.Context, pool *pgxpool.Pool, migrations []migration) (int, error) {
	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create migrations table: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		ok, err := applyMigration(ctx, pool, m)
		if err != nil {
			return applied, fmt.Errorf("%s (v%d): %w", m.Name, m.Version, err)
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

const migrationLockKey = 0x736b796465736b // "skydesk"

func applyMigration(ctx context.Context, pool *pgxpool.Pool, m migration) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(migrationLockKey)); err != nil {
		return false, err
	}

	var done bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM skydesk_migrations WHERE version = $1)`, m.Version,
	).Scan(&done); err != nil {
		return false, err
	}
	if done {
		return false, nil
	}

	if _, err := tx.Exec(ctx, m.Up); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO skydesk_migrations (version, name, applied_at) VALUES (@version, @name, @applied_at)`,
		pgx.NamedArgs{"version": m.Version, "name": m.Name, "applied_at": time.Now().UTC()},
	); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
