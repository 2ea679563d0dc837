// Package observability provides a metrics extension for skydesk that records
// lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"errors"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/plugin"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnPointsCredited      = (*MetricsExtension)(nil)
	_ plugin.OnPointsDebited       = (*MetricsExtension)(nil)
	_ plugin.OnPointsReset         = (*MetricsExtension)(nil)
	_ plugin.OnReservationCreated  = (*MetricsExtension)(nil)
	_ plugin.OnReservationFailed   = (*MetricsExtension)(nil)
	_ plugin.OnFlightAdded         = (*MetricsExtension)(nil)
	_ plugin.OnFlightRemoved       = (*MetricsExtension)(nil)
	_ plugin.OnInventoryReloaded   = (*MetricsExtension)(nil)
	_ plugin.OnTicketOpened        = (*MetricsExtension)(nil)
	_ plugin.OnTicketClosed        = (*MetricsExtension)(nil)
	_ plugin.OnAnnouncementCreated = (*MetricsExtension)(nil)
	_ plugin.OnAnnouncementUpdated = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a skydesk plugin to track points, bookings and support load.
type MetricsExtension struct {
	factory MetricFactory

	// Points metrics
	PointsCredited Counter
	PointsDebited  Counter
	DebitsFloored  Counter
	AccountsReset  Counter
	CreditAmount   Histogram

	// Booking metrics
	ReservationsCreated Counter
	ReservationsFailed  Counter
	CodesExhausted      Counter
	FlightsFull         Counter

	// Schedule metrics
	FlightsAdded     Counter
	FlightsRemoved   Counter
	FlightsDeparted  Counter
	InventoryReloads Counter
	InventorySize    Histogram

	// Support metrics
	TicketsOpened  Counter
	TicketsClosed  Counter
	TicketLifetime Histogram

	// Announcement metrics
	AnnouncementsCreated Counter
	AnnouncementsUpdated Counter

	// Error metrics
	StoreErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		PointsCredited: factory.Counter("skydesk.points.credited"),
		PointsDebited:  factory.Counter("skydesk.points.debited"),
		DebitsFloored:  factory.Counter("skydesk.points.debits_floored"),
		AccountsReset:  factory.Counter("skydesk.points.resets"),
		CreditAmount:   factory.Histogram("skydesk.points.credit_amount"),

		ReservationsCreated: factory.Counter("skydesk.reservation.created"),
		ReservationsFailed:  factory.Counter("skydesk.reservation.failed"),
		CodesExhausted:      factory.Counter("skydesk.reservation.codes_exhausted"),
		FlightsFull:         factory.Counter("skydesk.reservation.flight_full"),

		FlightsAdded:     factory.Counter("skydesk.flight.added"),
		FlightsRemoved:   factory.Counter("skydesk.flight.removed"),
		FlightsDeparted:  factory.Counter("skydesk.flight.departed"),
		InventoryReloads: factory.Counter("skydesk.inventory.reloads"),
		InventorySize:    factory.Histogram("skydesk.inventory.size"),

		TicketsOpened:  factory.Counter("skydesk.ticket.opened"),
		TicketsClosed:  factory.Counter("skydesk.ticket.closed"),
		TicketLifetime: factory.Histogram("skydesk.ticket.lifetime_seconds"),

		AnnouncementsCreated: factory.Counter("skydesk.announcement.created"),
		AnnouncementsUpdated: factory.Counter("skydesk.announcement.updated"),

		StoreErrors: factory.Counter("skydesk.store.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Points hooks
// ──────────────────────────────────────────────────

// OnPointsCredited implements plugin.OnPointsCredited.
func (m *MetricsExtension) OnPointsCredited(_ context.Context, _ *account.Account, amount int64) error {
	m.PointsCredited.Add(float64(amount))
	m.CreditAmount.Observe(float64(amount))
	return nil
}

// OnPointsDebited implements plugin.OnPointsDebited.
func (m *MetricsExtension) OnPointsDebited(_ context.Context, _ *account.Account, requested, applied int64) error {
	m.PointsDebited.Add(float64(applied))
	if applied < requested {
		m.DebitsFloored.Inc()
	}
	return nil
}

// OnPointsReset implements plugin.OnPointsReset.
func (m *MetricsExtension) OnPointsReset(_ context.Context, _ *account.Account) error {
	m.AccountsReset.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Booking hooks
// ──────────────────────────────────────────────────

// OnReservationCreated implements plugin.OnReservationCreated.
func (m *MetricsExtension) OnReservationCreated(_ context.Context, _ *reservation.Reservation) error {
	m.ReservationsCreated.Inc()
	return nil
}

// OnReservationFailed implements plugin.OnReservationFailed.
func (m *MetricsExtension) OnReservationFailed(_ context.Context, _ string, _ int64, err error) error {
	m.ReservationsFailed.Inc()
	switch {
	case errors.Is(err, skydesk.ErrCodeGenerationExhausted):
		m.CodesExhausted.Inc()
	case errors.Is(err, skydesk.ErrFlightFull):
		m.FlightsFull.Inc()
	case errors.Is(err, skydesk.ErrStorageUnavailable):
		m.StoreErrors.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Schedule hooks
// ──────────────────────────────────────────────────

// OnFlightAdded implements plugin.OnFlightAdded.
func (m *MetricsExtension) OnFlightAdded(_ context.Context, _ *flight.Flight) error {
	m.FlightsAdded.Inc()
	return nil
}

// OnFlightRemoved implements plugin.OnFlightRemoved.
func (m *MetricsExtension) OnFlightRemoved(_ context.Context, _ *flight.Flight, departed bool) error {
	if departed {
		m.FlightsDeparted.Inc()
	} else {
		m.FlightsRemoved.Inc()
	}
	return nil
}

// OnInventoryReloaded implements plugin.OnInventoryReloaded.
func (m *MetricsExtension) OnInventoryReloaded(_ context.Context, count int) error {
	m.InventoryReloads.Inc()
	m.InventorySize.Observe(float64(count))
	return nil
}

// ──────────────────────────────────────────────────
// Support hooks
// ──────────────────────────────────────────────────

// OnTicketOpened implements plugin.OnTicketOpened.
func (m *MetricsExtension) OnTicketOpened(_ context.Context, _ *ticket.Ticket) error {
	m.TicketsOpened.Inc()
	return nil
}

// OnTicketClosed implements plugin.OnTicketClosed.
func (m *MetricsExtension) OnTicketClosed(_ context.Context, t *ticket.Ticket) error {
	m.TicketsClosed.Inc()
	if t.ClosedAt != nil {
		m.TicketLifetime.Observe(t.ClosedAt.Sub(t.CreatedAt).Seconds())
	}
	return nil
}

// ──────────────────────────────────────────────────
// Announcement hooks
// ──────────────────────────────────────────────────

// OnAnnouncementCreated implements plugin.OnAnnouncementCreated.
func (m *MetricsExtension) OnAnnouncementCreated(_ context.Context, _ *announcement.Announcement) error {
	m.AnnouncementsCreated.Inc()
	return nil
}

// OnAnnouncementUpdated implements plugin.OnAnnouncementUpdated.
func (m *MetricsExtension) OnAnnouncementUpdated(_ context.Context, _ *announcement.Announcement) error {
	m.AnnouncementsUpdated.Inc()
	return nil
}
