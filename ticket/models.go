// Package ticket defines staff support tickets.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/types"
)

// Category routes a ticket to a team and picks its number prefix.
type Category string

const (
	CategoryPartnership Category = "Partnership Inquiry"
	CategoryGeneral     Category = "General Support"
	CategoryBooking     Category = "Flight Booking Issue"
)

// Categories lists the ticket categories in display order.
func Categories() []Category {
	return []Category{CategoryPartnership, CategoryGeneral, CategoryBooking}
}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Prefix returns the ticket number prefix of the category.
func (c Category) Prefix() string {
	switch c {
	case CategoryPartnership:
		return "ptn-ship"
	case CategoryGeneral:
		return "gnrl"
	case CategoryBooking:
		return "fbking"
	default:
		return "ticket"
	}
}

// FormatNumber renders the seq-th ticket number of a category, e.g. "gnrl-004".
func FormatNumber(c Category, seq int) string {
	return fmt.Sprintf("%s-%03d", c.Prefix(), seq)
}

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// MaxTitleLength bounds Ticket.Title.
const MaxTitleLength = 100

// Ticket is a support conversation bound to one channel.
type Ticket struct {
	types.Entity
	ID         id.TicketID `json:"id"`
	Number     string      `json:"number"`
	Category   Category    `json:"category"`
	Title      string      `json:"title"`
	OpenedBy   int64       `json:"opened_by"`
	ChannelID  int64       `json:"channel_id"`
	Status     Status      `json:"status"`
	Transcript string      `json:"transcript,omitempty"`
	ClosedBy   int64       `json:"closed_by,omitempty"`
	ClosedAt   *time.Time  `json:"closed_at,omitempty"`
}

// IsOpen reports whether the ticket still accepts messages.
func (t *Ticket) IsOpen() bool { return t.Status == StatusOpen }

// Clone returns a copy that shares no state with t.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	if t.ClosedAt != nil {
		at := *t.ClosedAt
		c.ClosedAt = &at
	}
	return &c
}

// ListOpts filters ListTickets. Zero values match everything.
type ListOpts struct {
	Category Category
	Status   Status
	OpenedBy int64
	Limit    int
	Offset   int
}

// Matches reports whether t passes the filters.
func (o ListOpts) Matches(t *Ticket) bool {
	if o.Category != "" && t.Category != o.Category {
		return false
	}
	if o.Status != "" && t.Status != o.Status {
		return false
	}
	if o.OpenedBy != 0 && t.OpenedBy != o.OpenedBy {
		return false
	}
	return true
}
