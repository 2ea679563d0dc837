// Package sqlite implements store.Store on SQLite through sqlx and the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	skydeskstore "github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/ticket"
)

// compile-time interface check
var _ skydeskstore.Store = (*Store)(nil)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// BusyTimeout is how long a statement waits on a locked database before
// failing.
const BusyTimeout = 30 * time.Second

// Store implements store.Store using SQLite.
type Store struct {
	db *sqlx.DB
}

// DSN builds a modernc.org/sqlite data source for the database file at
// path: WAL journal, the busy timeout, and write-locking transactions.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_txlock=immediate",
		path, BusyTimeout.Milliseconds())
}

// Open opens the database file at path. One connection is kept open, so
// statements from this process never contend with each other for the
// write lock.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("skydesk/sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return New(db), nil
}

// New wraps an existing sqlx database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying sqlx handle for direct access.
func (s *Store) DB() *sqlx.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := migrate(ctx, s.db, Migrations); err != nil {
		return fmt.Errorf("skydesk/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) GetAccount(ctx context.Context, accountID int64) (*account.Account, error) {
	m := new(accountModel)
	err := s.db.GetContext(ctx, m,
		`SELECT id, balance, flights, updated_at FROM skydesk_accounts WHERE id = ?`, accountID)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m)
}

// PutAccount replaces the whole row.
func (s *Store) PutAccount(ctx context.Context, a *account.Account) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT OR REPLACE INTO skydesk_accounts (id, balance, flights, updated_at)
VALUES (:id, :balance, :flights, :updated_at)`, toAccountModel(a))
	return err
}

func (s *Store) TopAccounts(ctx context.Context, n int) ([]*account.Account, error) {
	var models []accountModel
	err := s.db.SelectContext(ctx, &models, `
SELECT id, balance, flights, updated_at FROM skydesk_accounts
ORDER BY balance DESC, id ASC
LIMIT ?`, n)
	if err != nil {
		return nil, err
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		a, err := fromAccountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// ==================== Reservation Store ====================

const reservationColumns = `code, flight_code, route, aircraft, departure_time, departure_date,
cabin, holder_kind, holder_handle, holder_id, booked_by, created_at`

func (s *Store) InsertReservation(ctx context.Context, r *reservation.Reservation) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO skydesk_reservations (`+reservationColumns+`)
VALUES (:code, :flight_code, :route, :aircraft, :departure_time, :departure_date,
        :cabin, :holder_kind, :holder_handle, :holder_id, :booked_by, :created_at)`,
		toReservationModel(r))
	if isUniqueViolation(err) {
		return skydesk.ErrDuplicateCode
	}
	return err
}

func (s *Store) GetReservation(ctx context.Context, code string) (*reservation.Reservation, error) {
	m := new(reservationModel)
	err := s.db.GetContext(ctx, m,
		`SELECT `+reservationColumns+` FROM skydesk_reservations WHERE code = ?`, code)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrReservationNotFound
		}
		return nil, err
	}
	return fromReservationModel(m)
}

func (s *Store) ReservationExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM skydesk_reservations WHERE code = ?)`, code)
	return exists, err
}

func (s *Store) CountReservations(ctx context.Context, flightCode string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM skydesk_reservations WHERE flight_code = ?`, flightCode)
	return n, err
}

func (s *Store) ListReservations(ctx context.Context, opts reservation.ListOpts) ([]*reservation.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM skydesk_reservations WHERE 1 = 1`
	var args []any

	if opts.FlightCode != "" {
		q += ` AND flight_code = ?`
		args = append(args, opts.FlightCode)
	}
	if opts.BookedBy != 0 {
		q += ` AND booked_by = ?`
		args = append(args, opts.BookedBy)
	}
	q += ` ORDER BY rowid ASC`
	q, args = page(q, args, opts.Limit, opts.Offset)

	var models []reservationModel
	if err := s.db.SelectContext(ctx, &models, q, args...); err != nil {
		return nil, err
	}

	result := make([]*reservation.Reservation, len(models))
	for i := range models {
		r, err := fromReservationModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Flight Store ====================

const flightColumns = `code, route, aircraft, departure_time, departure_date`

func (s *Store) ListFlights(ctx context.Context) ([]*flight.Flight, error) {
	var models []flightModel
	if err := s.db.SelectContext(ctx, &models,
		`SELECT `+flightColumns+` FROM skydesk_flights ORDER BY code ASC`); err != nil {
		return nil, err
	}

	result := make([]*flight.Flight, len(models))
	for i := range models {
		result[i] = fromFlightModel(&models[i])
	}
	return result, nil
}

func (s *Store) GetFlight(ctx context.Context, code string) (*flight.Flight, error) {
	m := new(flightModel)
	err := s.db.GetContext(ctx, m,
		`SELECT `+flightColumns+` FROM skydesk_flights WHERE code = ?`, code)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrFlightNotFound
		}
		return nil, err
	}
	return fromFlightModel(m), nil
}

func (s *Store) PutFlight(ctx context.Context, f *flight.Flight) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT OR REPLACE INTO skydesk_flights (`+flightColumns+`)
VALUES (:code, :route, :aircraft, :departure_time, :departure_date)`, toFlightModel(f))
	return err
}

func (s *Store) DeleteFlight(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM skydesk_flights WHERE code = ?`, code)
	if err != nil {
		return err
	}
	return requireRow(res, skydesk.ErrFlightNotFound)
}

// ==================== Ticket Store ====================

const ticketColumns = `id, number, category, title, opened_by, channel_id, status,
transcript, closed_by, closed_at, created_at, updated_at`

func (s *Store) InsertTicket(ctx context.Context, t *ticket.Ticket) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO skydesk_tickets (`+ticketColumns+`)
VALUES (:id, :number, :category, :title, :opened_by, :channel_id, :status,
        :transcript, :closed_by, :closed_at, :created_at, :updated_at)`, toTicketModel(t))
	if isUniqueViolation(err) {
		return skydesk.ErrTicketExists
	}
	return err
}

func (s *Store) GetTicket(ctx context.Context, ticketID id.TicketID) (*ticket.Ticket, error) {
	return s.getTicket(ctx, `id = ?`, ticketID.String())
}

func (s *Store) GetTicketByChannel(ctx context.Context, channelID int64) (*ticket.Ticket, error) {
	return s.getTicket(ctx, `channel_id = ?`, channelID)
}

func (s *Store) getTicket(ctx context.Context, where string, arg any) (*ticket.Ticket, error) {
	m := new(ticketModel)
	err := s.db.GetContext(ctx, m,
		`SELECT `+ticketColumns+` FROM skydesk_tickets WHERE `+where, arg)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrTicketNotFound
		}
		return nil, err
	}
	return fromTicketModel(m)
}

func (s *Store) CountTickets(ctx context.Context, category ticket.Category) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM skydesk_tickets WHERE category = ?`, string(category))
	return n, err
}

func (s *Store) UpdateTicket(ctx context.Context, t *ticket.Ticket) error {
	res, err := s.db.NamedExecContext(ctx, `
UPDATE skydesk_tickets SET
    title = :title, status = :status, transcript = :transcript,
    closed_by = :closed_by, closed_at = :closed_at, updated_at = :updated_at
WHERE id = :id`, toTicketModel(t))
	if err != nil {
		return err
	}
	return requireRow(res, skydesk.ErrTicketNotFound)
}

func (s *Store) ListTickets(ctx context.Context, opts ticket.ListOpts) ([]*ticket.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM skydesk_tickets WHERE 1 = 1`
	var args []any

	if opts.Category != "" {
		q += ` AND category = ?`
		args = append(args, string(opts.Category))
	}
	if opts.Status != "" {
		q += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if opts.OpenedBy != 0 {
		q += ` AND opened_by = ?`
		args = append(args, opts.OpenedBy)
	}
	q += ` ORDER BY rowid ASC`
	q, args = page(q, args, opts.Limit, opts.Offset)

	var models []ticketModel
	if err := s.db.SelectContext(ctx, &models, q, args...); err != nil {
		return nil, err
	}

	result := make([]*ticket.Ticket, len(models))
	for i := range models {
		t, err := fromTicketModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

// ==================== Announcement Store ====================

const announcementColumns = `id, message_id, channel_id, flight_number,
departure_airport, departure_time, departure_gate, departure_terminal,
arrival_airport, arrival_time, arrival_gate, date, meal_service, host,
alerts, server_link, status, posted_by, created_at, updated_at`

func (s *Store) InsertAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO skydesk_announcements (`+announcementColumns+`)
VALUES (:id, :message_id, :channel_id, :flight_number,
        :departure_airport, :departure_time, :departure_gate, :departure_terminal,
        :arrival_airport, :arrival_time, :arrival_gate, :date, :meal_service, :host,
        :alerts, :server_link, :status, :posted_by, :created_at, :updated_at)`,
		toAnnouncementModel(a))
	if isUniqueViolation(err) {
		return skydesk.ErrAnnouncementExists
	}
	return err
}

func (s *Store) GetAnnouncement(ctx context.Context, messageID int64) (*announcement.Announcement, error) {
	m := new(announcementModel)
	err := s.db.GetContext(ctx, m,
		`SELECT `+announcementColumns+` FROM skydesk_announcements WHERE message_id = ?`, messageID)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrAnnouncementNotFound
		}
		return nil, err
	}
	return fromAnnouncementModel(m)
}

func (s *Store) UpdateAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	res, err := s.db.NamedExecContext(ctx, `
UPDATE skydesk_announcements SET
    channel_id = :channel_id, flight_number = :flight_number,
    departure_airport = :departure_airport, departure_time = :departure_time,
    departure_gate = :departure_gate, departure_terminal = :departure_terminal,
    arrival_airport = :arrival_airport, arrival_time = :arrival_time,
    arrival_gate = :arrival_gate, date = :date, meal_service = :meal_service,
    host = :host, alerts = :alerts, server_link = :server_link,
    status = :status, updated_at = :updated_at
WHERE message_id = :message_id`, toAnnouncementModel(a))
	if err != nil {
		return err
	}
	return requireRow(res, skydesk.ErrAnnouncementNotFound)
}

func (s *Store) ListAnnouncements(ctx context.Context, flightNumber string) ([]*announcement.Announcement, error) {
	q := `SELECT ` + announcementColumns + ` FROM skydesk_announcements`
	var args []any
	if flightNumber != "" {
		q += ` WHERE flight_number = ?`
		args = append(args, flightNumber)
	}
	q += ` ORDER BY rowid ASC`

	var models []announcementModel
	if err := s.db.SelectContext(ctx, &models, q, args...); err != nil {
		return nil, err
	}

	result := make([]*announcement.Announcement, len(models))
	for i := range models {
		a, err := fromAnnouncementModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// page appends LIMIT/OFFSET. SQLite needs a LIMIT before an OFFSET, so an
// offset alone uses LIMIT -1.
func page(q string, args []any, limit, offset int) (string, []any) {
	switch {
	case limit > 0:
		q += ` LIMIT ?`
		args = append(args, limit)
	case offset > 0:
		q += ` LIMIT -1`
	}
	if offset > 0 {
		q += ` OFFSET ?`
		args = append(args, offset)
	}
	return q, args
}

// requireRow maps a statement that touched no rows to notFound.
func requireRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports a PRIMARY KEY or UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}
