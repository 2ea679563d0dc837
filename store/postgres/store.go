// Package postgres implements store.Store on PostgreSQL through a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

// LockTimeout bounds how long a statement waits for a row or table lock.
const LockTimeout = 30 * time.Second

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Store implements store.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects a pool to dsn. Sessions get lock and statement timeouts of
// LockTimeout so a blocked write fails instead of hanging.
func Open(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("skydesk/postgres: parse config: %w", err)
	}

	timeout := strconv.FormatInt(LockTimeout.Milliseconds(), 10)
	config.ConnConfig.RuntimeParams["lock_timeout"] = timeout
	config.ConnConfig.RuntimeParams["statement_timeout"] = timeout
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("skydesk/postgres: create pool: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying pgx pool for direct access.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := migrate(ctx, s.pool, Migrations); err != nil {
		return fmt.Errorf("skydesk/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ==================== Account Store ====================

func (s *Store) GetAccount(ctx context.Context, accountID int64) (*account.Account, error) {
	m, err := queryOne[accountModel](ctx, s.pool,
		`SELECT id, balance, flights, updated_at FROM skydesk_accounts WHERE id = $1`, accountID)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m), nil
}

// PutAccount replaces the whole row.
func (s *Store) PutAccount(ctx context.Context, a *account.Account) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO skydesk_accounts (id, balance, flights, updated_at)
VALUES (@id, @balance, @flights, @updated_at)
ON CONFLICT (id) DO UPDATE SET
    balance = EXCLUDED.balance,
    flights = EXCLUDED.flights,
    updated_at = EXCLUDED.updated_at`,
		pgx.NamedArgs{
			"id":         a.ID,
			"balance":    a.Balance,
			"flights":    a.Flights,
			"updated_at": a.UpdatedAt.UTC(),
		})
	return err
}

func (s *Store) TopAccounts(ctx context.Context, n int) ([]*account.Account, error) {
	models, err := queryAll[accountModel](ctx, s.pool, `
SELECT id, balance, flights, updated_at FROM skydesk_accounts
ORDER BY balance DESC, id ASC
LIMIT $1`, n)
	if err != nil {
		return nil, err
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		result[i] = fromAccountModel(&models[i])
	}
	return result, nil
}

// ==================== Reservation Store ====================

const reservationColumns = `code, flight_code, route, aircraft, departure_time, departure_date,
cabin, holder_kind, holder_handle, holder_id, booked_by, created_at`

func (s *Store) InsertReservation(ctx context.Context, r *reservation.Reservation) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO skydesk_reservations (`+reservationColumns+`)
VALUES (@code, @flight_code, @route, @aircraft, @departure_time, @departure_date,
        @cabin, @holder_kind, @holder_handle, @holder_id, @booked_by, @created_at)`,
		pgx.NamedArgs{
			"code":           r.Code,
			"flight_code":    r.FlightCode,
			"route":          r.Route,
			"aircraft":       r.Aircraft,
			"departure_time": r.DepartureTime,
			"departure_date": r.DepartureDate,
			"cabin":          string(r.Cabin),
			"holder_kind":    string(r.HolderKind),
			"holder_handle":  r.HolderHandle,
			"holder_id":      r.HolderID,
			"booked_by":      r.BookedBy,
			"created_at":     r.CreatedAt.UTC(),
		})
	if isUniqueViolation(err) {
		return skydesk.ErrDuplicateCode
	}
	return err
}

func (s *Store) GetReservation(ctx context.Context, code string) (*reservation.Reservation, error) {
	m, err := queryOne[reservationModel](ctx, s.pool,
		`SELECT `+reservationColumns+` FROM skydesk_reservations WHERE code = $1`, code)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrReservationNotFound
		}
		return nil, err
	}
	return fromReservationModel(m), nil
}

func (s *Store) ReservationExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM skydesk_reservations WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (s *Store) CountReservations(ctx context.Context, flightCode string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM skydesk_reservations WHERE flight_code = $1`, flightCode).Scan(&n)
	return n, err
}

func (s *Store) ListReservations(ctx context.Context, opts reservation.ListOpts) ([]*reservation.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM skydesk_reservations WHERE TRUE`
	args := pgx.NamedArgs{}

	if opts.FlightCode != "" {
		q += ` AND flight_code = @flight_code`
		args["flight_code"] = opts.FlightCode
	}
	if opts.BookedBy != 0 {
		q += ` AND booked_by = @booked_by`
		args["booked_by"] = opts.BookedBy
	}
	q += ` ORDER BY seq ASC` + page(args, opts.Limit, opts.Offset)

	models, err := queryAll[reservationModel](ctx, s.pool, q, args)
	if err != nil {
		return nil, err
	}

	result := make([]*reservation.Reservation, len(models))
	for i := range models {
		result[i] = fromReservationModel(&models[i])
	}
	return result, nil
}

// ==================== Flight Store ====================

const flightColumns = `code, route, aircraft, departure_time, departure_date`

func (s *Store) ListFlights(ctx context.Context) ([]*flight.Flight, error) {
	models, err := queryAll[flightModel](ctx, s.pool,
		`SELECT `+flightColumns+` FROM skydesk_flights ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}

	result := make([]*flight.Flight, len(models))
	for i := range models {
		result[i] = fromFlightModel(&models[i])
	}
	return result, nil
}

func (s *Store) GetFlight(ctx context.Context, code string) (*flight.Flight, error) {
	m, err := queryOne[flightModel](ctx, s.pool,
		`SELECT `+flightColumns+` FROM skydesk_flights WHERE code = $1`, code)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrFlightNotFound
		}
		return nil, err
	}
	return fromFlightModel(m), nil
}

func (s *Store) PutFlight(ctx context.Context, f *flight.Flight) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO skydesk_flights (`+flightColumns+`)
VALUES (@code, @route, @aircraft, @departure_time, @departure_date)
ON CONFLICT (code) DO UPDATE SET
    route = EXCLUDED.route,
    aircraft = EXCLUDED.aircraft,
    departure_time = EXCLUDED.departure_time,
    departure_date = EXCLUDED.departure_date`,
		pgx.NamedArgs{
			"code":           f.Code,
			"route":          f.Route,
			"aircraft":       f.Aircraft,
			"departure_time": f.DepartureTime,
			"departure_date": f.DepartureDate,
		})
	return err
}

func (s *Store) DeleteFlight(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM skydesk_flights WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return skydesk.ErrFlightNotFound
	}
	return nil
}

// ==================== Ticket Store ====================

const ticketColumns = `id, number, category, title, opened_by, channel_id, status,
transcript, closed_by, closed_at, created_at, updated_at`

func ticketArgs(t *ticket.Ticket) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":         t.ID.String(),
		"number":     t.Number,
		"category":   string(t.Category),
		"title":      t.Title,
		"opened_by":  t.OpenedBy,
		"channel_id": t.ChannelID,
		"status":     string(t.Status),
		"transcript": t.Transcript,
		"closed_by":  t.ClosedBy,
		"closed_at":  t.ClosedAt,
		"created_at": t.CreatedAt.UTC(),
		"updated_at": t.UpdatedAt.UTC(),
	}
}

func (s *Store) InsertTicket(ctx context.Context, t *ticket.Ticket) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO skydesk_tickets (`+ticketColumns+`)
VALUES (@id, @number, @category, @title, @opened_by, @channel_id, @status,
        @transcript, @closed_by, @closed_at, @created_at, @updated_at)`, ticketArgs(t))
	if isUniqueViolation(err) {
		return skydesk.ErrTicketExists
	}
	return err
}

func (s *Store) GetTicket(ctx context.Context, ticketID id.TicketID) (*ticket.Ticket, error) {
	return s.getTicket(ctx, `id = $1`, ticketID.String())
}

func (s *Store) GetTicketByChannel(ctx context.Context, channelID int64) (*ticket.Ticket, error) {
	return s.getTicket(ctx, `channel_id = $1`, channelID)
}

func (s *Store) getTicket(ctx context.Context, where string, arg any) (*ticket.Ticket, error) {
	m, err := queryOne[ticketModel](ctx, s.pool,
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
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM skydesk_tickets WHERE category = $1`, string(category)).Scan(&n)
	return n, err
}

func (s *Store) UpdateTicket(ctx context.Context, t *ticket.Ticket) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE skydesk_tickets SET
    title = @title, status = @status, transcript = @transcript,
    closed_by = @closed_by, closed_at = @closed_at, updated_at = @updated_at
WHERE id = @id`, ticketArgs(t))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return skydesk.ErrTicketNotFound
	}
	return nil
}

func (s *Store) ListTickets(ctx context.Context, opts ticket.ListOpts) ([]*ticket.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM skydesk_tickets WHERE TRUE`
	args := pgx.NamedArgs{}

	if opts.Category != "" {
		q += ` AND category = @category`
		args["category"] = string(opts.Category)
	}
	if opts.Status != "" {
		q += ` AND status = @status`
		args["status"] = string(opts.Status)
	}
	if opts.OpenedBy != 0 {
		q += ` AND opened_by = @opened_by`
		args["opened_by"] = opts.OpenedBy
	}
	q += ` ORDER BY seq ASC` + page(args, opts.Limit, opts.Offset)

	models, err := queryAll[ticketModel](ctx, s.pool, q, args)
	if err != nil {
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

func announcementArgs(a *announcement.Announcement) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                 a.ID.String(),
		"message_id":         a.MessageID,
		"channel_id":         a.ChannelID,
		"flight_number":      a.FlightNumber,
		"departure_airport":  a.DepartureAirport,
		"departure_time":     a.DepartureTime,
		"departure_gate":     a.DepartureGate,
		"departure_terminal": a.DepartureTerminal,
		"arrival_airport":    a.ArrivalAirport,
		"arrival_time":       a.ArrivalTime,
		"arrival_gate":       a.ArrivalGate,
		"date":               a.Date,
		"meal_service":       a.MealService,
		"host":               a.Host,
		"alerts":             a.Alerts,
		"server_link":        a.ServerLink,
		"status":             a.Status,
		"posted_by":          a.PostedBy,
		"created_at":         a.CreatedAt.UTC(),
		"updated_at":         a.UpdatedAt.UTC(),
	}
}

func (s *Store) InsertAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO skydesk_announcements (`+announcementColumns+`)
VALUES (@id, @message_id, @channel_id, @flight_number,
        @departure_airport, @departure_time, @departure_gate, @departure_terminal,
        @arrival_airport, @arrival_time, @arrival_gate, @date, @meal_service, @host,
        @alerts, @server_link, @status, @posted_by, @created_at, @updated_at)`,
		announcementArgs(a))
	if isUniqueViolation(err) {
		return skydesk.ErrAnnouncementExists
	}
	return err
}

func (s *Store) GetAnnouncement(ctx context.Context, messageID int64) (*announcement.Announcement, error) {
	m, err := queryOne[announcementModel](ctx, s.pool,
		`SELECT `+announcementColumns+` FROM skydesk_announcements WHERE message_id = $1`, messageID)
	if err != nil {
		if isNoRows(err) {
			return nil, skydesk.ErrAnnouncementNotFound
		}
		return nil, err
	}
	return fromAnnouncementModel(m)
}

func (s *Store) UpdateAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE skydesk_announcements SET
    channel_id = @channel_id, flight_number = @flight_number,
    departure_airport = @departure_airport, departure_time = @departure_time,
    departure_gate = @departure_gate, departure_terminal = @departure_terminal,
    arrival_airport = @arrival_airport, arrival_time = @arrival_time,
    arrival_gate = @arrival_gate, date = @date, meal_service = @meal_service,
    host = @host, alerts = @alerts, server_link = @server_link,
    status = @status, updated_at = @updated_at
WHERE message_id = @message_id`, announcementArgs(a))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return skydesk.ErrAnnouncementNotFound
	}
	return nil
}

func (s *Store) ListAnnouncements(ctx context.Context, flightNumber string) ([]*announcement.Announcement, error) {
	q := `SELECT ` + announcementColumns + ` FROM skydesk_announcements`
	args := pgx.NamedArgs{}
	if flightNumber != "" {
		q += ` WHERE flight_number = @flight_number`
		args["flight_number"] = flightNumber
	}
	q += ` ORDER BY seq ASC`

	models, err := queryAll[announcementModel](ctx, s.pool, q, args)
	if err != nil {
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

// queryOne scans the single row of q into T by column name.
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, q string, args ...any) (*T, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[T])
}

// queryAll scans every row of q into T by column name.
func queryAll[T any](ctx context.Context, pool *pgxpool.Pool, q string, args ...any) ([]T, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// page returns the LIMIT/OFFSET clause and records its arguments.
func page(args pgx.NamedArgs, limit, offset int) string {
	clause := ""
	if limit > 0 {
		clause += ` LIMIT @limit`
		args["limit"] = limit
	}
	if offset > 0 {
		clause += ` OFFSET @offset`
		args["offset"] = offset
	}
	return clause
}

// isNoRows checks for the pgx no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation reports a primary key or unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
