// Package reservation defines flight bookings and their booking codes.
package reservation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cabin is a seating class.
type Cabin string

const (
	CabinEconomy        Cabin = "Economy"
	CabinPremiumEconomy Cabin = "Premium Economy"
	CabinBusiness       Cabin = "Business"
	CabinFirst          Cabin = "First Class"
)

// Cabins lists the bookable cabins in display order.
func Cabins() []Cabin {
	return []Cabin{CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst}
}

// ParseCabin matches s against the known cabins, ignoring case and
// surrounding space.
func ParseCabin(s string) (Cabin, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Cabins() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// HolderKind says whether a seat is booked for the booker or someone else.
type HolderKind string

const (
	HolderSelf  HolderKind = "myself"
	HolderOther HolderKind = "other"
)

// ParseHolderKind accepts "myself"/"self" and "other"/"someone else".
func ParseHolderKind(s string) (HolderKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "myself", "self", "me":
		return HolderSelf, true
	case "other", "someone else":
		return HolderOther, true
	default:
		return "", false
	}
}

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// ValidHandle reports whether s is a game handle: 3 to 20 letters, digits
// or underscores.
func ValidHandle(s string) bool {
	return handlePattern.MatchString(s)
}

// ParsePlatformID parses a numeric platform user id of 17 to 19 digits.
func ParsePlatformID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 17 || len(s) > 19 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Reservation is an insert-only booking record. Flight details are copied
// from the inventory at booking time.
type Reservation struct {
	Code          string     `json:"code"`
	FlightCode    string     `json:"flight_code"`
	Route         string     `json:"route"`
	Aircraft      string     `json:"aircraft"`
	DepartureTime string     `json:"departure_time"`
	DepartureDate string     `json:"departure_date"`
	Cabin         Cabin      `json:"cabin"`
	HolderKind    HolderKind `json:"holder_kind"`
	HolderHandle  string     `json:"holder_handle"`
	HolderID      int64      `json:"holder_id,string"`
	BookedBy      int64      `json:"booked_by,string"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Clone returns a copy that shares no state with r.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ListOpts filters ListReservations. Zero values match everything.
type ListOpts struct {
	FlightCode string
	BookedBy   int64
	Limit      int
	Offset     int
}

// Matches reports whether r passes the FlightCode and BookedBy filters.
func (o ListOpts) Matches(r *Reservation) bool {
	if o.FlightCode != "" && r.FlightCode != o.FlightCode {
		return false
	}
	if o.BookedBy != 0 && r.BookedBy != o.BookedBy {
		return false
	}
	return true
}

// CapacityPolicy decides what a full flight means for new bookings.
type CapacityPolicy string

const (
	// CapacityAdvisory only reports occupancy; bookings are never refused.
	CapacityAdvisory CapacityPolicy = "advisory"
	// CapacityEnforced refuses bookings once a flight reaches capacity.
	CapacityEnforced CapacityPolicy = "enforced"
)
