// Package flight defines scheduled flights, the in-process inventory cache
// that booking reads from, and the departure board view.
package flight

import (
	"strings"
	"time"
)

// Layouts of the schedule's date and time columns. Both are UTC.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// Flight is one scheduled departure, keyed by its flight code.
type Flight struct {
	Code          string `json:"code"`
	Route         string `json:"route"`
	Aircraft      string `json:"aircraft"`
	DepartureTime string `json:"departure_time"`
	DepartureDate string `json:"departure_date"`
}

// Departure parses the date and time columns into a UTC instant.
func (f Flight) Departure() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, f.DepartureDate+" "+f.DepartureTime, time.UTC)
}

// Origin is the part of Route before "->".
func (f Flight) Origin() string {
	origin, _, _ := strings.Cut(f.Route, "->")
	return strings.TrimSpace(origin)
}

// Destination is the part of Route after "->", or the whole route when it
// has no arrow.
func (f Flight) Destination() string {
	_, dest, ok := strings.Cut(f.Route, "->")
	if !ok {
		return strings.TrimSpace(f.Route)
	}
	return strings.TrimSpace(dest)
}

// ValidTime reports whether s is an HH:MM clock time.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}

// ValidDate reports whether s is a DD/MM/YYYY calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
