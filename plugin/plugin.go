// Package plugin provides lifecycle hooks for skydesk.
// Plugins implement any subset of the hook interfaces below and are
// discovered by type when registered.
package plugin

import (
	"context"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the desk starts. desk is the *skydesk.Desk.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, desk any) error
}

// OnShutdown is called when the desk stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Points hooks
// ──────────────────────────────────────────────────

// OnPointsCredited is called after points were awarded and committed.
type OnPointsCredited interface {
	Plugin
	OnPointsCredited(ctx context.Context, acct *account.Account, amount int64) error
}

// OnPointsDebited is called after points were deducted and committed.
// applied is what actually left the balance after the zero floor.
type OnPointsDebited interface {
	Plugin
	OnPointsDebited(ctx context.Context, acct *account.Account, requested, applied int64) error
}

// OnPointsReset is called after an account was zeroed.
type OnPointsReset interface {
	Plugin
	OnPointsReset(ctx context.Context, acct *account.Account) error
}

// ──────────────────────────────────────────────────
// Booking hooks
// ──────────────────────────────────────────────────

// OnReservationCreated is called after a reservation was committed.
type OnReservationCreated interface {
	Plugin
	OnReservationCreated(ctx context.Context, r *reservation.Reservation) error
}

// OnReservationFailed is called when a booking attempt is rejected.
type OnReservationFailed interface {
	Plugin
	OnReservationFailed(ctx context.Context, flightCode string, bookedBy int64, err error) error
}

// ──────────────────────────────────────────────────
// Schedule hooks
// ──────────────────────────────────────────────────

// OnFlightAdded is called after a flight was scheduled or rescheduled.
type OnFlightAdded interface {
	Plugin
	OnFlightAdded(ctx context.Context, f *flight.Flight) error
}

// OnFlightRemoved is called after a flight left the schedule.
// departed is true when the sweeper removed it.
type OnFlightRemoved interface {
	Plugin
	OnFlightRemoved(ctx context.Context, f *flight.Flight, departed bool) error
}

// OnInventoryReloaded is called after the inventory cache was refreshed.
type OnInventoryReloaded interface {
	Plugin
	OnInventoryReloaded(ctx context.Context, count int) error
}

// ──────────────────────────────────────────────────
// Support hooks
// ──────────────────────────────────────────────────

// OnTicketOpened is called after a ticket was committed.
type OnTicketOpened interface {
	Plugin
	OnTicketOpened(ctx context.Context, t *ticket.Ticket) error
}

// OnTicketClosed is called after a ticket was closed.
type OnTicketClosed interface {
	Plugin
	OnTicketClosed(ctx context.Context, t *ticket.Ticket) error
}

// ──────────────────────────────────────────────────
// Announcement hooks
// ──────────────────────────────────────────────────

// OnAnnouncementCreated is called after an announcement was recorded.
type OnAnnouncementCreated interface {
	Plugin
	OnAnnouncementCreated(ctx context.Context, a *announcement.Announcement) error
}

// OnAnnouncementUpdated is called after an announcement was edited.
type OnAnnouncementUpdated interface {
	Plugin
	OnAnnouncementUpdated(ctx context.Context, a *announcement.Announcement) error
}
