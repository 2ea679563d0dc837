package sqlite

import (
	"database/sql"
	"time"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
	"github.com/xraph/skydesk/types"
)

// SQLite has no native timestamp type; times are stored as RFC 3339 text.
const timeFormat = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeFormat, s)
}

// ==================== Account models ====================

type accountModel struct {
	ID        int64  `db:"id"`
	Balance   int64  `db:"balance"`
	Flights   int64  `db:"flights"`
	UpdatedAt string `db:"updated_at"`
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:        a.ID,
		Balance:   a.Balance,
		Flights:   a.Flights,
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	updated, err := parseTime(m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account.Account{
		ID:        m.ID,
		Balance:   m.Balance,
		Flights:   m.Flights,
		UpdatedAt: updated,
	}, nil
}

// ==================== Reservation models ====================

type reservationModel struct {
	Code          string `db:"code"`
	FlightCode    string `db:"flight_code"`
	Route         string `db:"route"`
	Aircraft      string `db:"aircraft"`
	DepartureTime string `db:"departure_time"`
	DepartureDate string `db:"departure_date"`
	Cabin         string `db:"cabin"`
	HolderKind    string `db:"holder_kind"`
	HolderHandle  string `db:"holder_handle"`
	HolderID      int64  `db:"holder_id"`
	BookedBy      int64  `db:"booked_by"`
	CreatedAt     string `db:"created_at"`
}

func toReservationModel(r *reservation.Reservation) *reservationModel {
	return &reservationModel{
		Code:          r.Code,
		FlightCode:    r.FlightCode,
		Route:         r.Route,
		Aircraft:      r.Aircraft,
		DepartureTime: r.DepartureTime,
		DepartureDate: r.DepartureDate,
		Cabin:         string(r.Cabin),
		HolderKind:    string(r.HolderKind),
		HolderHandle:  r.HolderHandle,
		HolderID:      r.HolderID,
		BookedBy:      r.BookedBy,
		CreatedAt:     formatTime(r.CreatedAt),
	}
}

func fromReservationModel(m *reservationModel) (*reservation.Reservation, error) {
	created, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reservation.Reservation{
		Code:          m.Code,
		FlightCode:    m.FlightCode,
		Route:         m.Route,
		Aircraft:      m.Aircraft,
		DepartureTime: m.DepartureTime,
		DepartureDate: m.DepartureDate,
		Cabin:         reservation.Cabin(m.Cabin),
		HolderKind:    reservation.HolderKind(m.HolderKind),
		HolderHandle:  m.HolderHandle,
		HolderID:      m.HolderID,
		BookedBy:      m.BookedBy,
		CreatedAt:     created,
	}, nil
}

// ==================== Flight models ====================

type flightModel struct {
	Code          string `db:"code"`
	Route         string `db:"route"`
	Aircraft      string `db:"aircraft"`
	DepartureTime string `db:"departure_time"`
	DepartureDate string `db:"departure_date"`
}

func toFlightModel(f *flight.Flight) *flightModel {
	return &flightModel{
		Code:          f.Code,
		Route:         f.Route,
		Aircraft:      f.Aircraft,
		DepartureTime: f.DepartureTime,
		DepartureDate: f.DepartureDate,
	}
}

func fromFlightModel(m *flightModel) *flight.Flight {
	return &flight.Flight{
		Code:          m.Code,
		Route:         m.Route,
		Aircraft:      m.Aircraft,
		DepartureTime: m.DepartureTime,
		DepartureDate: m.DepartureDate,
	}
}

// ==================== Ticket models ====================

type ticketModel struct {
	ID         string         `db:"id"`
	Number     string         `db:"number"`
	Category   string         `db:"category"`
	Title      string         `db:"title"`
	OpenedBy   int64          `db:"opened_by"`
	ChannelID  int64          `db:"channel_id"`
	Status     string         `db:"status"`
	Transcript string         `db:"transcript"`
	ClosedBy   int64          `db:"closed_by"`
	ClosedAt   sql.NullString `db:"closed_at"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
}

func toTicketModel(t *ticket.Ticket) *ticketModel {
	m := &ticketModel{
		ID:         t.ID.String(),
		Number:     t.Number,
		Category:   string(t.Category),
		Title:      t.Title,
		OpenedBy:   t.OpenedBy,
		ChannelID:  t.ChannelID,
		Status:     string(t.Status),
		Transcript: t.Transcript,
		ClosedBy:   t.ClosedBy,
		CreatedAt:  formatTime(t.CreatedAt),
		UpdatedAt:  formatTime(t.UpdatedAt),
	}
	if t.ClosedAt != nil {
		m.ClosedAt = sql.NullString{String: formatTime(*t.ClosedAt), Valid: true}
	}
	return m
}

func fromTicketModel(m *ticketModel) (*ticket.Ticket, error) {
	ticketID, err := id.ParseTicketID(m.ID)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t := &ticket.Ticket{
		Entity:     types.Entity{CreatedAt: created, UpdatedAt: updated},
		ID:         ticketID,
		Number:     m.Number,
		Category:   ticket.Category(m.Category),
		Title:      m.Title,
		OpenedBy:   m.OpenedBy,
		ChannelID:  m.ChannelID,
		Status:     ticket.Status(m.Status),
		Transcript: m.Transcript,
		ClosedBy:   m.ClosedBy,
	}
	if m.ClosedAt.Valid {
		closed, err := parseTime(m.ClosedAt.String)
		if err != nil {
			return nil, err
		}
		t.ClosedAt = &closed
	}
	return t, nil
}

// ==================== Announcement models ====================

type announcementModel struct {
	ID                string `db:"id"`
	MessageID         int64  `db:"message_id"`
	ChannelID         int64  `db:"channel_id"`
	FlightNumber      string `db:"flight_number"`
	DepartureAirport  string `db:"departure_airport"`
	DepartureTime     string `db:"departure_time"`
	DepartureGate     string `db:"departure_gate"`
	DepartureTerminal string `db:"departure_terminal"`
	ArrivalAirport    string `db:"arrival_airport"`
	ArrivalTime       string `db:"arrival_time"`
	ArrivalGate       string `db:"arrival_gate"`
	Date              string `db:"date"`
	MealService       string `db:"meal_service"`
	Host              string `db:"host"`
	Alerts            string `db:"alerts"`
	ServerLink        string `db:"server_link"`
	Status            string `db:"status"`
	PostedBy          int64  `db:"posted_by"`
	CreatedAt         string `db:"created_at"`
	UpdatedAt         string `db:"updated_at"`
}

func toAnnouncementModel(a *announcement.Announcement) *announcementModel {
	return &announcementModel{
		ID:                a.ID.String(),
		MessageID:         a.MessageID,
		ChannelID:         a.ChannelID,
		FlightNumber:      a.FlightNumber,
		DepartureAirport:  a.DepartureAirport,
		DepartureTime:     a.DepartureTime,
		DepartureGate:     a.DepartureGate,
		DepartureTerminal: a.DepartureTerminal,
		ArrivalAirport:    a.ArrivalAirport,
		ArrivalTime:       a.ArrivalTime,
		ArrivalGate:       a.ArrivalGate,
		Date:              a.Date,
		MealService:       a.MealService,
		Host:              a.Host,
		Alerts:            a.Alerts,
		ServerLink:        a.ServerLink,
		Status:            a.Status,
		PostedBy:          a.PostedBy,
		CreatedAt:         formatTime(a.CreatedAt),
		UpdatedAt:         formatTime(a.UpdatedAt),
	}
}

func fromAnnouncementModel(m *announcementModel) (*announcement.Announcement, error) {
	annID, err := id.ParseAnnouncementID(m.ID)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &announcement.Announcement{
		Entity:            types.Entity{CreatedAt: created, UpdatedAt: updated},
		ID:                annID,
		MessageID:         m.MessageID,
		ChannelID:         m.ChannelID,
		FlightNumber:      m.FlightNumber,
		DepartureAirport:  m.DepartureAirport,
		DepartureTime:     m.DepartureTime,
		DepartureGate:     m.DepartureGate,
		DepartureTerminal: m.DepartureTerminal,
		ArrivalAirport:    m.ArrivalAirport,
		ArrivalTime:       m.ArrivalTime,
		ArrivalGate:       m.ArrivalGate,
		Date:              m.Date,
		MealService:       m.MealService,
		Host:              m.Host,
		Alerts:            m.Alerts,
		ServerLink:        m.ServerLink,
		Status:            m.Status,
		PostedBy:          m.PostedBy,
	}, nil
}
