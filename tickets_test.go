package skydesk_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/ticket"
)

func TestOpenTicketNumbering(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	open := func(c ticket.Category, channel int64) *ticket.Ticket {
		t.Helper()
		tk, err := d.OpenTicket(ctx, skydesk.TicketRequest{
			Category:  c,
			Title:     "Lost baggage",
			OpenedBy:  11,
			ChannelID: channel,
		})
		if err != nil {
			t.Fatalf("OpenTicket: %v", err)
		}
		return tk
	}

	if got := open(ticket.CategoryGeneral, 1).Number; got != "gnrl-001" {
		t.Errorf("first general = %s", got)
	}
	if got := open(ticket.CategoryGeneral, 2).Number; got != "gnrl-002" {
		t.Errorf("second general = %s", got)
	}
	if got := open(ticket.CategoryPartnership, 3).Number; got != "ptn-ship-001" {
		t.Errorf("first partnership = %s", got)
	}
	tk := open(ticket.CategoryBooking, 4)
	if tk.Number != "fbking-001" || !tk.IsOpen() || tk.ID.IsNil() {
		t.Errorf("booking ticket = %+v", tk)
	}
}

func TestOpenTicketValidation(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	valid := skydesk.TicketRequest{Category: ticket.CategoryGeneral, Title: "Help", OpenedBy: 1, ChannelID: 2}
	tests := []struct {
		name  string
		edit  func(*skydesk.TicketRequest)
		field string
	}{
		{"category", func(r *skydesk.TicketRequest) { r.Category = "Complaints" }, "category"},
		{"empty title", func(r *skydesk.TicketRequest) { r.Title = "  " }, "title"},
		{"long title", func(r *skydesk.TicketRequest) { r.Title = strings.Repeat("x", 101) }, "title"},
		{"opener", func(r *skydesk.TicketRequest) { r.OpenedBy = 0 }, "opened_by"},
		{"channel", func(r *skydesk.TicketRequest) { r.ChannelID = 0 }, "channel_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.edit(&req)
			_, err := d.OpenTicket(ctx, req)
			var ve skydesk.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("OpenTicket = %v, want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestOpenTicketDuplicateChannel(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	req := skydesk.TicketRequest{Category: ticket.CategoryGeneral, Title: "Help", OpenedBy: 1, ChannelID: 99}
	if _, err := d.OpenTicket(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := d.OpenTicket(ctx, req); !errors.Is(err, skydesk.ErrTicketExists) {
		t.Errorf("OpenTicket = %v, want ErrTicketExists", err)
	}
}

func TestCloseTicket(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	opened, err := d.OpenTicket(ctx, skydesk.TicketRequest{
		Category: ticket.CategoryBooking, Title: "Wrong cabin", OpenedBy: 5, ChannelID: 50,
	})
	if err != nil {
		t.Fatal(err)
	}

	closed, err := d.CloseTicket(ctx, 50, 6, "user: hi\nstaff: fixed")
	if err != nil {
		t.Fatalf("CloseTicket: %v", err)
	}
	if closed.IsOpen() || closed.ClosedBy != 6 || closed.ClosedAt == nil {
		t.Errorf("closed ticket = %+v", closed)
	}
	if closed.ID.String() != opened.ID.String() {
		t.Error("CloseTicket returned a different ticket")
	}

	stored, err := d.Ticket(ctx, opened.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Transcript != "user: hi\nstaff: fixed" {
		t.Errorf("transcript = %q", stored.Transcript)
	}

	if _, err := d.CloseTicket(ctx, 50, 6, ""); !errors.Is(err, skydesk.ErrTicketClosed) {
		t.Errorf("second close = %v, want ErrTicketClosed", err)
	}
	if _, err := d.CloseTicket(ctx, 51, 6, ""); !errors.Is(err, skydesk.ErrTicketNotFound) {
		t.Errorf("close unknown = %v, want ErrTicketNotFound", err)
	}
}

func TestConcurrentTicketNumbers(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	const workers = 20
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(channel int64) {
			defer wg.Done()
			_, err := d.OpenTicket(ctx, skydesk.TicketRequest{
				Category: ticket.CategoryGeneral, Title: "Help", OpenedBy: 1, ChannelID: channel,
			})
			if err != nil {
				t.Errorf("OpenTicket: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	tickets, err := d.Tickets(ctx, ticket.ListOpts{Category: ticket.CategoryGeneral})
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, tk := range tickets {
		if seen[tk.Number] {
			t.Errorf("number %s issued twice", tk.Number)
		}
		seen[tk.Number] = true
	}
	if len(seen) != workers || !seen["gnrl-020"] {
		t.Errorf("got %d distinct numbers", len(seen))
	}
}
