package skydesk

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/ticket"
	"github.com/xraph/skydesk/types"
)

// ──────────────────────────────────────────────────
// Support tickets
// ──────────────────────────────────────────────────

// TicketRequest opens a ticket in a dedicated channel.
type TicketRequest struct {
	Category  ticket.Category
	Title     string
	OpenedBy  int64
	ChannelID int64
}

// OpenTicket records a new open ticket. Its number is the category prefix
// and the next sequence in that category; counting and inserting share one
// lock so numbers are never handed out twice.
func (d *Desk) OpenTicket(ctx context.Context, req TicketRequest) (*ticket.Ticket, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.OpenTicket", trace.WithAttributes(
		attribute.String("ticket.category", string(req.Category)),
		attribute.Int64("ticket.channel_id", req.ChannelID),
	))
	defer span.End()

	category, ok := ticket.ParseCategory(string(req.Category))
	title := strings.TrimSpace(req.Title)
	var verr error
	switch {
	case !ok:
		verr = ValidationError{Field: "category", Message: "unknown category"}
	case title == "" || utf8.RuneCountInString(title) > ticket.MaxTitleLength:
		verr = ValidationError{Field: "title", Message: "must be 1-100 characters"}
	case req.OpenedBy <= 0:
		verr = ValidationError{Field: "opened_by", Message: "is required"}
	case req.ChannelID <= 0:
		verr = ValidationError{Field: "channel_id", Message: "is required"}
	}
	if verr != nil {
		return nil, d.fail(span, "open_ticket", verr, "opened_by", req.OpenedBy)
	}

	t, err := func() (*ticket.Ticket, error) {
		d.ticketsMu.Lock()
		defer d.ticketsMu.Unlock()

		n, err := d.store.CountTickets(ctx, category)
		if err != nil {
			return nil, storageErr(err)
		}

		t := &ticket.Ticket{
			Entity:    types.NewEntity(d.now()),
			ID:        id.NewTicketID(),
			Number:    ticket.FormatNumber(category, n+1),
			Category:  category,
			Title:     title,
			OpenedBy:  req.OpenedBy,
			ChannelID: req.ChannelID,
			Status:    ticket.StatusOpen,
		}
		if err := d.store.InsertTicket(ctx, t); err != nil {
			return nil, storageErr(err)
		}
		return t, nil
	}()
	if err != nil {
		return nil, d.fail(span, "open_ticket", err, "opened_by", req.OpenedBy, "channel_id", req.ChannelID)
	}

	span.SetAttributes(attribute.String("ticket.number", t.Number))
	d.plugins.EmitTicketOpened(ctx, t)
	return t, nil
}

// CloseTicket closes the open ticket bound to channelID and stores its
// transcript. Closing twice fails with ErrTicketClosed.
func (d *Desk) CloseTicket(ctx context.Context, channelID, closedBy int64, transcript string) (*ticket.Ticket, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.CloseTicket", trace.WithAttributes(
		attribute.Int64("ticket.channel_id", channelID),
	))
	defer span.End()

	t, err := func() (*ticket.Ticket, error) {
		d.ticketsMu.Lock()
		defer d.ticketsMu.Unlock()

		t, err := d.store.GetTicketByChannel(ctx, channelID)
		if err != nil {
			return nil, storageErr(err)
		}
		if !t.IsOpen() {
			return nil, ErrTicketClosed
		}

		now := d.now().UTC()
		t.Status = ticket.StatusClosed
		t.Transcript = transcript
		t.ClosedBy = closedBy
		t.ClosedAt = &now
		t.Touch(now)

		if err := d.store.UpdateTicket(ctx, t); err != nil {
			return nil, storageErr(err)
		}
		return t, nil
	}()
	if err != nil {
		return nil, d.fail(span, "close_ticket", err, "channel_id", channelID, "closed_by", closedBy)
	}

	d.plugins.EmitTicketClosed(ctx, t)
	return t, nil
}

// Ticket returns a ticket by id.
func (d *Desk) Ticket(ctx context.Context, ticketID id.TicketID) (*ticket.Ticket, error) {
	t, err := d.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, storageErr(err)
	}
	return t, nil
}

// TicketByChannel returns the ticket bound to channelID.
func (d *Desk) TicketByChannel(ctx context.Context, channelID int64) (*ticket.Ticket, error) {
	t, err := d.store.GetTicketByChannel(ctx, channelID)
	if err != nil {
		return nil, storageErr(err)
	}
	return t, nil
}

// Tickets lists tickets in the order they were opened.
func (d *Desk) Tickets(ctx context.Context, opts ticket.ListOpts) ([]*ticket.Ticket, error) {
	ts, err := d.store.ListTickets(ctx, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	return ts, nil
}
