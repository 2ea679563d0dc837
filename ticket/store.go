package ticket

import (
	"context"

	"github.com/xraph/skydesk/id"
)

// Store persists tickets. Numbers and channel ids are unique.
type Store interface {
	InsertTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, ticketID id.TicketID) (*Ticket, error)
	GetTicketByChannel(ctx context.Context, channelID int64) (*Ticket, error)
	CountTickets(ctx context.Context, category Category) (int, error)
	UpdateTicket(ctx context.Context, t *Ticket) error
	ListTickets(ctx context.Context, opts ListOpts) ([]*Ticket, error)
}
