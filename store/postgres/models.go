package postgres

import (
	"time"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
	"github.com/xraph/skydesk/types"
)

// ==================== Account models ====================

type accountModel struct {
	ID        int64     `db:"id"`
	Balance   int64     `db:"balance"`
	Flights   int64     `db:"flights"`
	UpdatedAt time.Time `db:"updated_at"`
}

func fromAccountModel(m *accountModel) *account.Account {
	return &account.Account{
		ID:        m.ID,
		Balance:   m.Balance,
		Flights:   m.Flights,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// ==================== Reservation models ====================

type reservationModel struct {
	Code          string    `db:"code"`
	FlightCode    string    `db:"flight_code"`
	Route         string    `db:"route"`
	Aircraft      string    `db:"aircraft"`
	DepartureTime string    `db:"departure_time"`
	DepartureDate string    `db:"departure_date"`
	Cabin         string    `db:"cabin"`
	HolderKind    string    `db:"holder_kind"`
	HolderHandle  string    `db:"holder_handle"`
	HolderID      int64     `db:"holder_id"`
	BookedBy      int64     `db:"booked_by"`
	CreatedAt     time.Time `db:"created_at"`
}

func fromReservationModel(m *reservationModel) *reservation.Reservation {
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
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

// ==================== Flight models ====================

type flightModel struct {
	Code          string `db:"code"`
	Route         string `db:"route"`
	Aircraft      string `db:"aircraft"`
	DepartureTime string `db:"departure_time"`
	DepartureDate string `db:"departure_date"`
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
	ID         string     `db:"id"`
	Number     string     `db:"number"`
	Category   string     `db:"category"`
	Title      string     `db:"title"`
	OpenedBy   int64      `db:"opened_by"`
	ChannelID  int64      `db:"channel_id"`
	Status     string     `db:"status"`
	Transcript string     `db:"transcript"`
	ClosedBy   int64      `db:"closed_by"`
	ClosedAt   *time.Time `db:"closed_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func fromTicketModel(m *ticketModel) (*ticket.Ticket, error) {
	ticketID, err := id.ParseTicketID(m.ID)
	if err != nil {
		return nil, err
	}

	t := &ticket.Ticket{
		Entity:     types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()},
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
	if m.ClosedAt != nil {
		closed := m.ClosedAt.UTC()
		t.ClosedAt = &closed
	}
	return t, nil
}

// ==================== Announcement models ====================

type announcementModel struct {
	ID                string    `db:"id"`
	MessageID         int64     `db:"message_id"`
	ChannelID         int64     `db:"channel_id"`
	FlightNumber      string    `db:"flight_number"`
	DepartureAirport  string    `db:"departure_airport"`
	DepartureTime     string    `db:"departure_time"`
	DepartureGate     string    `db:"departure_gate"`
	DepartureTerminal string    `db:"departure_terminal"`
	ArrivalAirport    string    `db:"arrival_airport"`
	ArrivalTime       string    `db:"arrival_time"`
	ArrivalGate       string    `db:"arrival_gate"`
	Date              string    `db:"date"`
	MealService       string    `db:"meal_service"`
	Host              string    `db:"host"`
	Alerts            string    `db:"alerts"`
	ServerLink        string    `db:"server_link"`
	Status            string    `db:"status"`
	PostedBy          int64     `db:"posted_by"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func fromAnnouncementModel(m *announcementModel) (*announcement.Announcement, error) {
	annID, err := id.ParseAnnouncementID(m.ID)
	if err != nil {
		return nil, err
	}

	return &announcement.Announcement{
		Entity:            types.Entity{CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()},
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
