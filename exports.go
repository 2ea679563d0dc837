package skydesk

import (
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/types"
)

// Re-export common types so callers can stay on the root package.

// Entity is re-exported from types package.
type Entity = types.Entity

// Account is re-exported from the account package.
type Account = account.Account

// Flight is re-exported from the flight package.
type Flight = flight.Flight

// Reservation is re-exported from the reservation package.
type Reservation = reservation.Reservation

// Capacity policies.
const (
	CapacityAdvisory = reservation.CapacityAdvisory
	CapacityEnforced = reservation.CapacityEnforced
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
