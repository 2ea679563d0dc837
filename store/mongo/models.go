package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
	"github.com/xraph/skydesk/types"
)

// Insert-ordered collections carry a seq ObjectID; ObjectIDs generated in
// one process increase monotonically.

// ==================== Account models ====================

type accountModel struct {
	ID        int64     `bson:"_id"`
	Balance   int64     `bson:"balance"`
	Flights   int64     `bson:"flights"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		ID:        a.ID,
		Balance:   a.Balance,
		Flights:   a.Flights,
		UpdatedAt: a.UpdatedAt.UTC(),
	}
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
	Code          string        `bson:"_id"`
	Seq           bson.ObjectID `bson:"seq"`
	FlightCode    string        `bson:"flight_code"`
	Route         string        `bson:"route"`
	Aircraft      string        `bson:"aircraft"`
	DepartureTime string        `bson:"departure_time"`
	DepartureDate string        `bson:"departure_date"`
	Cabin         string        `bson:"cabin"`
	HolderKind    string        `bson:"holder_kind"`
	HolderHandle  string        `bson:"holder_handle"`
	HolderID      int64         `bson:"holder_id"`
	BookedBy      int64         `bson:"booked_by"`
	CreatedAt     time.Time     `bson:"created_at"`
}

func toReservationModel(r *reservation.Reservation) *reservationModel {
	return &reservationModel{
		Code:          r.Code,
		Seq:           bson.NewObjectID(),
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
		CreatedAt:     r.CreatedAt.UTC(),
	}
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
	Code          string `bson:"_id"`
	Route         string `bson:"route"`
	Aircraft      string `bson:"aircraft"`
	DepartureTime string `bson:"departure_time"`
	DepartureDate string `bson:"departure_date"`
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
	ID         string        `bson:"_id"`
	Seq        bson.ObjectID `bson:"seq"`
	Number     string        `bson:"number"`
	Category   string        `bson:"category"`
	Title      string        `bson:"title"`
	OpenedBy   int64         `bson:"opened_by"`
	ChannelID  int64         `bson:"channel_id"`
	Status     string        `bson:"status"`
	Transcript string        `bson:"transcript"`
	ClosedBy   int64         `bson:"closed_by"`
	ClosedAt   *time.Time    `bson:"closed_at,omitempty"`
	CreatedAt  time.Time     `bson:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at"`
}

func toTicketModel(t *ticket.Ticket) *ticketModel {
	return &ticketModel{
		ID:         t.ID.String(),
		Seq:        bson.NewObjectID(),
		Number:     t.Number,
		Category:   string(t.Category),
		Title:      t.Title,
		OpenedBy:   t.OpenedBy,
		ChannelID:  t.ChannelID,
		Status:     string(t.Status),
		Transcript: t.Transcript,
		ClosedBy:   t.ClosedBy,
		ClosedAt:   t.ClosedAt,
		CreatedAt:  t.CreatedAt.UTC(),
		UpdatedAt:  t.UpdatedAt.UTC(),
	}
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
	ID                string        `bson:"_id"`
	Seq               bson.ObjectID `bson:"seq"`
	MessageID         int64         `bson:"message_id"`
	ChannelID         int64         `bson:"channel_id"`
	FlightNumber      string        `bson:"flight_number"`
	DepartureAirport  string        `bson:"departure_airport"`
	DepartureTime     string        `bson:"departure_time"`
	DepartureGate     string        `bson:"departure_gate"`
	DepartureTerminal string        `bson:"departure_terminal"`
	ArrivalAirport    string        `bson:"arrival_airport"`
	ArrivalTime       string        `bson:"arrival_time"`
	ArrivalGate       string        `bson:"arrival_gate"`
	Date              string        `bson:"date"`
	MealService       string        `bson:"meal_service"`
	Host              string        `bson:"host"`
	Alerts            string        `bson:"alerts"`
	ServerLink        string        `bson:"server_link"`
	Status            string        `bson:"status"`
	PostedBy          int64         `bson:"posted_by"`
	CreatedAt         time.Time     `bson:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at"`
}

func toAnnouncementModel(a *announcement.Announcement) *announcementModel {
	return &announcementModel{
		ID:                a.ID.String(),
		Seq:               bson.NewObjectID(),
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
		CreatedAt:         a.CreatedAt.UTC(),
		UpdatedAt:         a.UpdatedAt.UTC(),
	}
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
