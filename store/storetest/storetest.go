// Package storetest holds the behavioural checks every store.Store
// backend must pass. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/id"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/ticket"
	"github.com/xraph/skydesk/types"
)

// Factory returns a migrated, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

var stamp = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

// Run exercises newStore against the store.Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"AccountUpsert", testAccountUpsert},
		{"TopAccounts", testTopAccounts},
		{"ReservationInsertOnly", testReservationInsertOnly},
		{"ReservationQueries", testReservationQueries},
		{"FlightSchedule", testFlightSchedule},
		{"Tickets", testTickets},
		{"Announcements", testAnnouncements},
		{"ConcurrentInserts", testConcurrentInserts},
		{"MigrateTwice", testMigrateTwice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func testAccountUpsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetAccount(ctx, 1); !errors.Is(err, skydesk.ErrAccountNotFound) {
		t.Fatalf("GetAccount on empty store = %v, want ErrAccountNotFound", err)
	}

	a := &account.Account{ID: 1, Balance: 100, Flights: 2, UpdatedAt: stamp}
	if err := s.PutAccount(ctx, a); err != nil {
		t.Fatalf("PutAccount: %v", err)
	}
	a.Balance = 40
	a.Flights = 3
	if err := s.PutAccount(ctx, a); err != nil {
		t.Fatalf("PutAccount replace: %v", err)
	}

	got, err := s.GetAccount(ctx, 1)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Balance != 40 || got.Flights != 3 {
		t.Errorf("got %d/%d, want 40/3", got.Balance, got.Flights)
	}
	if !got.UpdatedAt.Equal(stamp) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, stamp)
	}
}

func testTopAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, a := range []account.Account{
		{ID: 10, Balance: 300},
		{ID: 20, Balance: 900},
		{ID: 5, Balance: 300},
		{ID: 30, Balance: 0},
	} {
		a.UpdatedAt = stamp
		if err := s.PutAccount(ctx, &a); err != nil {
			t.Fatal(err)
		}
	}

	top, err := s.TopAccounts(ctx, 3)
	if err != nil {
		t.Fatalf("TopAccounts: %v", err)
	}
	want := []int64{20, 5, 10}
	if len(top) != len(want) {
		t.Fatalf("len = %d, want %d", len(top), len(want))
	}
	for i, acctID := range want {
		if top[i].ID != acctID {
			t.Errorf("rank %d = %d, want %d", i+1, top[i].ID, acctID)
		}
	}
}

func newReservation(code, flightCode string, bookedBy int64) *reservation.Reservation {
	return &reservation.Reservation{
		Code:          code,
		FlightCode:    flightCode,
		Route:         "LHR->JFK",
		Aircraft:      "B787-9",
		DepartureTime: "14:30",
		DepartureDate: "18/10/2026",
		Cabin:         reservation.CabinPremiumEconomy,
		HolderKind:    reservation.HolderSelf,
		HolderHandle:  "pilot_one",
		HolderID:      bookedBy,
		BookedBy:      bookedBy,
		CreatedAt:     stamp,
	}
}

func testReservationInsertOnly(t *testing.T, s store.Store) {
	ctx := context.Background()

	r := newReservation("BKAB12CD", "SD1", 111)
	if err := s.InsertReservation(ctx, r); err != nil {
		t.Fatalf("InsertReservation: %v", err)
	}

	dup := newReservation("BKAB12CD", "SD2", 222)
	if err := s.InsertReservation(ctx, dup); !errors.Is(err, skydesk.ErrDuplicateCode) {
		t.Fatalf("duplicate insert = %v, want ErrDuplicateCode", err)
	}

	got, err := s.GetReservation(ctx, "BKAB12CD")
	if err != nil {
		t.Fatalf("GetReservation: %v", err)
	}
	if got.FlightCode != "SD1" || got.BookedBy != 111 {
		t.Errorf("duplicate insert overwrote the original: %+v", got)
	}
	if got.Cabin != reservation.CabinPremiumEconomy || got.HolderHandle != "pilot_one" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if !got.CreatedAt.Equal(stamp) {
		t.Errorf("created_at = %v", got.CreatedAt)
	}

	if _, err := s.GetReservation(ctx, "BKZZZZZZ"); !errors.Is(err, skydesk.ErrReservationNotFound) {
		t.Errorf("GetReservation missing = %v, want ErrReservationNotFound", err)
	}
}

func testReservationQueries(t *testing.T, s store.Store) {
	ctx := context.Background()

	for i, f := range []string{"SD1", "SD2", "SD1", "SD1"} {
		code := "BK00000" + string(rune('1'+i))
		if err := s.InsertReservation(ctx, newReservation(code, f, int64(100+i%2))); err != nil {
			t.Fatal(err)
		}
	}

	exists, err := s.ReservationExists(ctx, "BK000001")
	if err != nil || !exists {
		t.Errorf("ReservationExists = %v, %v", exists, err)
	}
	exists, err = s.ReservationExists(ctx, "BK999999")
	if err != nil || exists {
		t.Errorf("ReservationExists missing = %v, %v", exists, err)
	}

	n, err := s.CountReservations(ctx, "SD1")
	if err != nil || n != 3 {
		t.Errorf("CountReservations(SD1) = %d, %v", n, err)
	}
	n, err = s.CountReservations(ctx, "SD9")
	if err != nil || n != 0 {
		t.Errorf("CountReservations(SD9) = %d, %v", n, err)
	}

	rs, err := s.ListReservations(ctx, reservation.ListOpts{FlightCode: "SD1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 3 || rs[0].Code != "BK000001" || rs[2].Code != "BK000004" {
		t.Errorf("ListReservations(SD1) = %v", codes(rs))
	}

	rs, err = s.ListReservations(ctx, reservation.ListOpts{BookedBy: 101})
	if err != nil || len(rs) != 2 {
		t.Errorf("ListReservations(BookedBy) = %v, %v", codes(rs), err)
	}

	rs, err = s.ListReservations(ctx, reservation.ListOpts{Limit: 2, Offset: 1})
	if err != nil || len(rs) != 2 || rs[0].Code != "BK000002" {
		t.Errorf("ListReservations(page) = %v, %v", codes(rs), err)
	}
}

func codes(rs []*reservation.Reservation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Code
	}
	return out
}

func testFlightSchedule(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, code := range []string{"SD30", "SD10", "SD20"} {
		f := &flight.Flight{Code: code, Route: "A->B", Aircraft: "A320", DepartureTime: "08:00", DepartureDate: "18/10/2026"}
		if err := s.PutFlight(ctx, f); err != nil {
			t.Fatalf("PutFlight: %v", err)
		}
	}
	if err := s.PutFlight(ctx, &flight.Flight{Code: "SD10", Route: "C->D", DepartureTime: "09:15", DepartureDate: "19/10/2026"}); err != nil {
		t.Fatalf("PutFlight replace: %v", err)
	}

	flights, err := s.ListFlights(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(flights) != 3 || flights[0].Code != "SD10" || flights[2].Code != "SD30" {
		t.Fatalf("ListFlights = %+v", flights)
	}
	if flights[0].Route != "C->D" || flights[0].DepartureTime != "09:15" {
		t.Errorf("PutFlight did not replace: %+v", flights[0])
	}

	if err := s.DeleteFlight(ctx, "SD20"); err != nil {
		t.Fatalf("DeleteFlight: %v", err)
	}
	if _, err := s.GetFlight(ctx, "SD20"); !errors.Is(err, skydesk.ErrFlightNotFound) {
		t.Errorf("GetFlight deleted = %v, want ErrFlightNotFound", err)
	}
	if err := s.DeleteFlight(ctx, "SD20"); !errors.Is(err, skydesk.ErrFlightNotFound) {
		t.Errorf("DeleteFlight twice = %v, want ErrFlightNotFound", err)
	}
}

func newTicket(c ticket.Category, seq int, channel int64) *ticket.Ticket {
	return &ticket.Ticket{
		Entity:    types.NewEntity(stamp),
		ID:        id.NewTicketID(),
		Number:    ticket.FormatNumber(c, seq),
		Category:  c,
		Title:     "Seat change",
		OpenedBy:  7,
		ChannelID: channel,
		Status:    ticket.StatusOpen,
	}
}

func testTickets(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := newTicket(ticket.CategoryGeneral, 1, 500)
	if err := s.InsertTicket(ctx, first); err != nil {
		t.Fatalf("InsertTicket: %v", err)
	}
	if err := s.InsertTicket(ctx, newTicket(ticket.CategoryGeneral, 1, 501)); !errors.Is(err, skydesk.ErrTicketExists) {
		t.Errorf("duplicate number = %v, want ErrTicketExists", err)
	}
	if err := s.InsertTicket(ctx, newTicket(ticket.CategoryGeneral, 2, 500)); !errors.Is(err, skydesk.ErrTicketExists) {
		t.Errorf("duplicate channel = %v, want ErrTicketExists", err)
	}
	if err := s.InsertTicket(ctx, newTicket(ticket.CategoryBooking, 1, 502)); err != nil {
		t.Fatal(err)
	}

	n, err := s.CountTickets(ctx, ticket.CategoryGeneral)
	if err != nil || n != 1 {
		t.Errorf("CountTickets = %d, %v", n, err)
	}

	closedAt := stamp.Add(time.Hour)
	first.Status = ticket.StatusClosed
	first.ClosedBy = 8
	first.ClosedAt = &closedAt
	first.Transcript = "resolved"
	first.Touch(closedAt)
	if err := s.UpdateTicket(ctx, first); err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}

	got, err := s.GetTicketByChannel(ctx, 500)
	if err != nil {
		t.Fatalf("GetTicketByChannel: %v", err)
	}
	if got.ID.String() != first.ID.String() || got.Status != ticket.StatusClosed || got.Transcript != "resolved" {
		t.Errorf("updated ticket = %+v", got)
	}
	if got.ClosedAt == nil || !got.ClosedAt.Equal(closedAt) {
		t.Errorf("closed_at = %v", got.ClosedAt)
	}

	byID, err := s.GetTicket(ctx, first.ID)
	if err != nil || byID.Number != "gnrl-001" {
		t.Errorf("GetTicket = %+v, %v", byID, err)
	}
	if _, err := s.GetTicket(ctx, id.NewTicketID()); !errors.Is(err, skydesk.ErrTicketNotFound) {
		t.Errorf("GetTicket missing = %v", err)
	}
	if _, err := s.GetTicketByChannel(ctx, 999); !errors.Is(err, skydesk.ErrTicketNotFound) {
		t.Errorf("GetTicketByChannel missing = %v", err)
	}
	if err := s.UpdateTicket(ctx, newTicket(ticket.CategoryGeneral, 9, 900)); !errors.Is(err, skydesk.ErrTicketNotFound) {
		t.Errorf("UpdateTicket missing = %v", err)
	}

	open, err := s.ListTickets(ctx, ticket.ListOpts{Status: ticket.StatusOpen})
	if err != nil || len(open) != 1 || open[0].Category != ticket.CategoryBooking {
		t.Errorf("ListTickets(open) = %v, %v", open, err)
	}
	all, err := s.ListTickets(ctx, ticket.ListOpts{})
	if err != nil || len(all) != 2 {
		t.Errorf("ListTickets(all) = %d, %v", len(all), err)
	}
}

func testAnnouncements(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := &announcement.Announcement{
		Entity:        types.NewEntity(stamp),
		ID:            id.NewAnnouncementID(),
		MessageID:     1234567890,
		ChannelID:     42,
		FlightNumber:  "SD101",
		DepartureTime: "10:00",
		ArrivalTime:   "12:00",
		DepartureGate: "B4",
		Status:        announcement.DefaultStatus,
		PostedBy:      9,
	}
	if err := s.InsertAnnouncement(ctx, a); err != nil {
		t.Fatalf("InsertAnnouncement: %v", err)
	}
	dup := a.Clone()
	dup.ID = id.NewAnnouncementID()
	if err := s.InsertAnnouncement(ctx, dup); !errors.Is(err, skydesk.ErrAnnouncementExists) {
		t.Errorf("duplicate message id = %v, want ErrAnnouncementExists", err)
	}

	a.Status = "Delayed"
	a.ServerLink = "https://example.test/join"
	a.Touch(stamp.Add(time.Minute))
	if err := s.UpdateAnnouncement(ctx, a); err != nil {
		t.Fatalf("UpdateAnnouncement: %v", err)
	}

	got, err := s.GetAnnouncement(ctx, 1234567890)
	if err != nil {
		t.Fatalf("GetAnnouncement: %v", err)
	}
	if got.Status != "Delayed" || got.ServerLink != "https://example.test/join" || got.DepartureGate != "B4" {
		t.Errorf("announcement = %+v", got)
	}
	if got.ID.String() != a.ID.String() {
		t.Errorf("id = %s, want %s", got.ID, a.ID)
	}

	other := a.Clone()
	other.ID = id.NewAnnouncementID()
	other.MessageID = 99
	other.FlightNumber = "SD202"
	if err := s.InsertAnnouncement(ctx, other); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListAnnouncements(ctx, "SD101")
	if err != nil || len(list) != 1 {
		t.Errorf("ListAnnouncements(SD101) = %d, %v", len(list), err)
	}
	list, err = s.ListAnnouncements(ctx, "")
	if err != nil || len(list) != 2 {
		t.Errorf("ListAnnouncements(all) = %d, %v", len(list), err)
	}

	if _, err := s.GetAnnouncement(ctx, 1); !errors.Is(err, skydesk.ErrAnnouncementNotFound) {
		t.Errorf("GetAnnouncement missing = %v", err)
	}
	missing := a.Clone()
	missing.MessageID = 2
	if err := s.UpdateAnnouncement(ctx, missing); !errors.Is(err, skydesk.ErrAnnouncementNotFound) {
		t.Errorf("UpdateAnnouncement missing = %v", err)
	}
}

func testConcurrentInserts(t *testing.T, s store.Store) {
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted, dupes := 0, 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.InsertReservation(ctx, newReservation("BKRACE00", "SD1", 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				inserted++
			case errors.Is(err, skydesk.ErrDuplicateCode):
				dupes++
			default:
				t.Errorf("InsertReservation: %v", err)
			}
		}()
	}
	wg.Wait()

	if inserted != 1 || dupes != workers-1 {
		t.Errorf("inserted=%d dupes=%d, want 1 and %d", inserted, dupes, workers-1)
	}
}

func testMigrateTwice(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
