package flight

import (
	"fmt"
	"time"
)

// Status is a flight's departure board state.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCheckIn   Status = "CHECK-IN"
	StatusBoarding  Status = "BOARDING"
	StatusDeparting Status = "DEPARTING"
	StatusDeparted  Status = "DEPARTED"
)

// StatusAt derives the board status from the minutes remaining until departure.
func StatusAt(departure, now time.Time) Status {
	minutes := departure.Sub(now).Minutes()
	switch {
	case minutes < -30:
		return StatusDeparted
	case minutes < 0:
		return StatusDeparting
	case minutes < 30:
		return StatusBoarding
	case minutes < 120:
		return StatusCheckIn
	default:
		return StatusScheduled
	}
}

// StatusAt is the board status of f at now. Unparsable schedules read as
// SCHEDULED.
func (f Flight) StatusAt(now time.Time) Status {
	dep, err := f.Departure()
	if err != nil {
		return StatusScheduled
	}
	return StatusAt(dep, now)
}

// BoardEntry is one row of the departure board.
type BoardEntry struct {
	Flight     Flight `json:"flight"`
	Status     Status `json:"status"`
	Passengers int    `json:"passengers"`
	Capacity   int    `json:"capacity"`
}

// Occupancy renders passengers against capacity, e.g. "3/15".
func (b BoardEntry) Occupancy() string {
	return fmt.Sprintf("%d/%d", b.Passengers, b.Capacity)
}
