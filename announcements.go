package skydesk

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/types"
)

// ──────────────────────────────────────────────────
// Boarding announcements
// ──────────────────────────────────────────────────

// Announce records a posted boarding announcement.
func (d *Desk) Announce(ctx context.Context, a *announcement.Announcement) error {
	ctx, span := d.tracer.Start(ctx, "skydesk.Announce", trace.WithAttributes(
		attribute.String("flight.code", a.FlightNumber),
		attribute.Int64("announcement.message_id", a.MessageID),
	))
	defer span.End()

	a.FlightNumber = strings.TrimSpace(a.FlightNumber)
	var verr error
	switch {
	case a.FlightNumber == "":
		verr = ValidationError{Field: "flight_number", Message: "is required"}
	case a.MessageID == 0:
		verr = ValidationError{Field: "message_id", Message: "is required"}
	case !flight.ValidTime(a.DepartureTime):
		verr = ValidationError{Field: "departure_time", Message: "must be HH:MM"}
	case !flight.ValidTime(a.ArrivalTime):
		verr = ValidationError{Field: "arrival_time", Message: "must be HH:MM"}
	}
	if verr != nil {
		return d.fail(span, "announce", verr, "flight", a.FlightNumber)
	}

	if a.ID.IsNil() {
		a.ID = id.NewAnnouncementID()
	}
	if strings.TrimSpace(a.Status) == "" {
		a.Status = announcement.DefaultStatus
	}
	a.Entity = types.NewEntity(d.now())

	err := func() error {
		d.announcementsMu.Lock()
		defer d.announcementsMu.Unlock()
		return storageErr(d.store.InsertAnnouncement(ctx, a))
	}()
	if err != nil {
		return d.fail(span, "announce", err, "flight", a.FlightNumber, "message_id", a.MessageID)
	}

	d.plugins.EmitAnnouncementCreated(ctx, a)
	return nil
}

// UpdateAnnouncement changes the status of the announcement posted as
// messageID. A non-empty serverLink replaces the stored link.
func (d *Desk) UpdateAnnouncement(ctx context.Context, messageID int64, status, serverLink string) (*announcement.Announcement, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.UpdateAnnouncement", trace.WithAttributes(
		attribute.Int64("announcement.message_id", messageID),
	))
	defer span.End()

	status = strings.TrimSpace(status)
	if status == "" {
		return nil, d.fail(span, "update_announcement",
			ValidationError{Field: "status", Message: "is required"}, "message_id", messageID)
	}

	a, err := func() (*announcement.Announcement, error) {
		d.announcementsMu.Lock()
		defer d.announcementsMu.Unlock()

		a, err := d.store.GetAnnouncement(ctx, messageID)
		if err != nil {
			return nil, storageErr(err)
		}
		a.Status = status
		if link := strings.TrimSpace(serverLink); link != "" {
			a.ServerLink = link
		}
		a.Touch(d.now())

		if err := d.store.UpdateAnnouncement(ctx, a); err != nil {
			return nil, storageErr(err)
		}
		return a, nil
	}()
	if err != nil {
		return nil, d.fail(span, "update_announcement", err, "message_id", messageID)
	}

	d.plugins.EmitAnnouncementUpdated(ctx, a)
	return a, nil
}

// Announcement returns the announcement posted as messageID.
func (d *Desk) Announcement(ctx context.Context, messageID int64) (*announcement.Announcement, error) {
	a, err := d.store.GetAnnouncement(ctx, messageID)
	if err != nil {
		return nil, storageErr(err)
	}
	return a, nil
}

// Announcements lists announcements for flightNumber, or all when empty.
func (d *Desk) Announcements(ctx context.Context, flightNumber string) ([]*announcement.Announcement, error) {
	as, err := d.store.ListAnnouncements(ctx, flightNumber)
	if err != nil {
		return nil, storageErr(err)
	}
	return as, nil
}
