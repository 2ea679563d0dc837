// Package events defines the messages skydesk publishes to the broker.
package events

import (
	"strconv"
	"time"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/reservation"
)

// Queue names. Each event type has its own durable queue.
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueuePointsChanged    = "points.changed"
)

// Points change kinds.
const (
	KindCredit = "credit"
	KindDebit  = "debit"
	KindReset  = "reset"
)

// BookingConfirmed is published after a reservation is committed. It carries
// enough detail for a consumer to send the confirmation without reading the
// store.
type BookingConfirmed struct {
	Code          string    `json:"code"`
	FlightCode    string    `json:"flight_code"`
	Route         string    `json:"route"`
	Aircraft      string    `json:"aircraft"`
	DepartureDate string    `json:"departure_date"`
	DepartureTime string    `json:"departure_time"`
	Cabin         string    `json:"cabin"`
	HolderKind    string    `json:"holder_kind"`
	HolderHandle  string    `json:"holder_handle"`
	HolderID      string    `json:"holder_id"`
	BookedBy      string    `json:"booked_by"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// NewBookingConfirmed builds the event for r. Platform ids are rendered as
// strings because they exceed the integer range of many JSON consumers.
func NewBookingConfirmed(r *reservation.Reservation) BookingConfirmed {
	return BookingConfirmed{
		Code:          r.Code,
		FlightCode:    r.FlightCode,
		Route:         r.Route,
		Aircraft:      r.Aircraft,
		DepartureDate: r.DepartureDate,
		DepartureTime: r.DepartureTime,
		Cabin:         string(r.Cabin),
		HolderKind:    string(r.HolderKind),
		HolderHandle:  r.HolderHandle,
		HolderID:      strconv.FormatInt(r.HolderID, 10),
		BookedBy:      strconv.FormatInt(r.BookedBy, 10),
		ConfirmedAt:   r.CreatedAt,
	}
}

// PointsChanged is published after every committed balance change.
type PointsChanged struct {
	AccountID string    `json:"account_id"`
	Kind      string    `json:"kind"`
	Requested int64     `json:"requested"`
	Applied   int64     `json:"applied"`
	Balance   int64     `json:"balance"`
	Flights   int64     `json:"flights"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewPointsChanged builds the event for acct after a change of kind.
func NewPointsChanged(acct *account.Account, kind string, requested, applied int64) PointsChanged {
	return PointsChanged{
		AccountID: strconv.FormatInt(acct.ID, 10),
		Kind:      kind,
		Requested: requested,
		Applied:   applied,
		Balance:   acct.Balance,
		Flights:   acct.Flights,
		ChangedAt: acct.UpdatedAt,
	}
}
