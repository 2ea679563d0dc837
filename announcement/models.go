// Package announcement defines boarding announcements posted for flights.
package announcement

import (
	"strings"

	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/types"
)

// Announcement is a posted boarding notice. It is addressed by the id of
// the message it was posted as, which staff use to edit it later.
type Announcement struct {
	types.Entity
	ID                id.AnnouncementID `json:"id"`
	MessageID         int64             `json:"message_id"`
	ChannelID         int64             `json:"channel_id"`
	FlightNumber      string            `json:"flight_number"`
	DepartureAirport  string            `json:"departure_airport"`
	DepartureTime     string            `json:"departure_time"`
	DepartureGate     string            `json:"departure_gate"`
	DepartureTerminal string            `json:"departure_terminal"`
	ArrivalAirport    string            `json:"arrival_airport"`
	ArrivalTime       string            `json:"arrival_time"`
	ArrivalGate       string            `json:"arrival_gate"`
	Date              string            `json:"date"`
	MealService       string            `json:"meal_service"`
	Host              string            `json:"host"`
	Alerts            string            `json:"alerts"`
	ServerLink        string            `json:"server_link"`
	Status            string            `json:"status"`
	PostedBy          int64             `json:"posted_by"`
}

// DefaultStatus is the status of a freshly posted announcement.
const DefaultStatus = "On Time"

// OnTime reports whether the status mentions "on time".
func (a *Announcement) OnTime() bool {
	return strings.Contains(strings.ToLower(a.Status), "on time")
}

// Clone returns a copy that shares no state with a.
func (a *Announcement) Clone() *Announcement {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
