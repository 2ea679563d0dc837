// Package audithook bridges skydesk lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package depends on no audit
// product. Callers inject a RecorderFunc adapter at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/plugin"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnPointsCredited      = (*Extension)(nil)
	_ plugin.OnPointsDebited       = (*Extension)(nil)
	_ plugin.OnPointsReset         = (*Extension)(nil)
	_ plugin.OnReservationCreated  = (*Extension)(nil)
	_ plugin.OnReservationFailed   = (*Extension)(nil)
	_ plugin.OnFlightAdded         = (*Extension)(nil)
	_ plugin.OnFlightRemoved       = (*Extension)(nil)
	_ plugin.OnInventoryReloaded   = (*Extension)(nil)
	_ plugin.OnTicketOpened        = (*Extension)(nil)
	_ plugin.OnTicketClosed        = (*Extension)(nil)
	_ plugin.OnAnnouncementCreated = (*Extension)(nil)
	_ plugin.OnAnnouncementUpdated = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	ID         id.AuditEventID `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	Category   string          `json:"category"`
	ResourceID string          `json:"resource_id,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Outcome    string          `json:"outcome"`
	Severity   string          `json:"severity"`
	Reason     string          `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges skydesk lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	only     map[string]bool // nil = every action
	skip     map[string]bool
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Points hooks
// ──────────────────────────────────────────────────

// OnPointsCredited implements plugin.OnPointsCredited.
func (e *Extension) OnPointsCredited(ctx context.Context, acct *account.Account, amount int64) error {
	return e.record(ctx, ActionPointsCredited, SeverityInfo, OutcomeSuccess,
		ResourceAccount, accountKey(acct.ID), CategoryLoyalty, nil,
		"amount", amount,
		"balance", acct.Balance,
		"flights", acct.Flights,
	)
}

// OnPointsDebited implements plugin.OnPointsDebited.
func (e *Extension) OnPointsDebited(ctx context.Context, acct *account.Account, requested, applied int64) error {
	severity := SeverityInfo
	if applied < requested {
		severity = SeverityWarning
	}
	return e.record(ctx, ActionPointsDebited, severity, OutcomeSuccess,
		ResourceAccount, accountKey(acct.ID), CategoryLoyalty, nil,
		"requested", requested,
		"applied", applied,
		"balance", acct.Balance,
	)
}

// OnPointsReset implements plugin.OnPointsReset.
func (e *Extension) OnPointsReset(ctx context.Context, acct *account.Account) error {
	return e.record(ctx, ActionPointsReset, SeverityWarning, OutcomeSuccess,
		ResourceAccount, accountKey(acct.ID), CategoryLoyalty, nil,
	)
}

// ──────────────────────────────────────────────────
// Booking hooks
// ──────────────────────────────────────────────────

// OnReservationCreated implements plugin.OnReservationCreated.
func (e *Extension) OnReservationCreated(ctx context.Context, r *reservation.Reservation) error {
	return e.record(ctx, ActionReservationCreated, SeverityInfo, OutcomeSuccess,
		ResourceReservation, r.Code, CategoryBooking, nil,
		"flight", r.FlightCode,
		"cabin", string(r.Cabin),
		"holder_kind", string(r.HolderKind),
		"booked_by", r.BookedBy,
	)
}

// OnReservationFailed implements plugin.OnReservationFailed.
// Validation rejections are user typos, not audit material.
func (e *Extension) OnReservationFailed(ctx context.Context, flightCode string, bookedBy int64, err error) error {
	if skydesk.IsValidation(err) {
		return nil
	}
	severity := SeverityWarning
	if skydesk.IsRetryable(err) {
		severity = SeverityError
	}
	return e.record(ctx, ActionReservationFailed, severity, OutcomeFailure,
		ResourceReservation, "", CategoryBooking, err,
		"flight", flightCode,
		"booked_by", bookedBy,
	)
}

// ──────────────────────────────────────────────────
// Schedule hooks
// ──────────────────────────────────────────────────

// OnFlightAdded implements plugin.OnFlightAdded.
func (e *Extension) OnFlightAdded(ctx context.Context, f *flight.Flight) error {
	return e.record(ctx, ActionFlightAdded, SeverityInfo, OutcomeSuccess,
		ResourceFlight, f.Code, CategorySchedule, nil,
		"route", f.Route,
		"departure", f.DepartureDate+" "+f.DepartureTime,
	)
}

// OnFlightRemoved implements plugin.OnFlightRemoved.
func (e *Extension) OnFlightRemoved(ctx context.Context, f *flight.Flight, departed bool) error {
	action := ActionFlightRemoved
	if departed {
		action = ActionFlightDeparted
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceFlight, f.Code, CategorySchedule, nil,
		"route", f.Route,
	)
}

// OnInventoryReloaded implements plugin.OnInventoryReloaded.
func (e *Extension) OnInventoryReloaded(ctx context.Context, count int) error {
	return e.record(ctx, ActionInventoryReloaded, SeverityInfo, OutcomeSuccess,
		ResourceInventory, "", CategoryOperations, nil,
		"flights", count,
	)
}

// ──────────────────────────────────────────────────
// Support hooks
// ──────────────────────────────────────────────────

// OnTicketOpened implements plugin.OnTicketOpened.
func (e *Extension) OnTicketOpened(ctx context.Context, t *ticket.Ticket) error {
	return e.record(ctx, ActionTicketOpened, SeverityInfo, OutcomeSuccess,
		ResourceTicket, t.ID.String(), CategorySupport, nil,
		"number", t.Number,
		"category", string(t.Category),
		"opened_by", t.OpenedBy,
	)
}

// OnTicketClosed implements plugin.OnTicketClosed.
func (e *Extension) OnTicketClosed(ctx context.Context, t *ticket.Ticket) error {
	return e.record(ctx, ActionTicketClosed, SeverityInfo, OutcomeSuccess,
		ResourceTicket, t.ID.String(), CategorySupport, nil,
		"number", t.Number,
		"closed_by", t.ClosedBy,
	)
}

// ──────────────────────────────────────────────────
// Announcement hooks
// ──────────────────────────────────────────────────

// OnAnnouncementCreated implements plugin.OnAnnouncementCreated.
func (e *Extension) OnAnnouncementCreated(ctx context.Context, a *announcement.Announcement) error {
	return e.record(ctx, ActionAnnouncementCreated, SeverityInfo, OutcomeSuccess,
		ResourceAnnouncement, a.ID.String(), CategoryOperations, nil,
		"flight", a.FlightNumber,
		"message_id", a.MessageID,
	)
}

// OnAnnouncementUpdated implements plugin.OnAnnouncementUpdated.
func (e *Extension) OnAnnouncementUpdated(ctx context.Context, a *announcement.Announcement) error {
	return e.record(ctx, ActionAnnouncementUpdated, SeverityInfo, OutcomeSuccess,
		ResourceAnnouncement, a.ID.String(), CategoryOperations, nil,
		"flight", a.FlightNumber,
		"status", a.Status,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func accountKey(accountID int64) string {
	return strconv.FormatInt(accountID, 10)
}

func (e *Extension) audits(action string) bool {
	if e.skip[action] {
		return false
	}
	return e.only == nil || e.only[action]
}

// record builds and sends an audit event if the action is enabled.
// Recorder failures are logged and never fail the hook.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if !e.audits(action) {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		ID:         id.NewAuditEventID(),
		Timestamp:  e.now().UTC(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
