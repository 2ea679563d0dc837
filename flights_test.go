package skydesk_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/flight"
)

func TestAddFlightValidation(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	tests := []struct {
		name  string
		f     flight.Flight
		field string
	}{
		{"missing code", flight.Flight{Route: "A->B", DepartureTime: "10:00", DepartureDate: "18/10/2026"}, "code"},
		{"missing route", flight.Flight{Code: "X1", DepartureTime: "10:00", DepartureDate: "18/10/2026"}, "route"},
		{"bad time", flight.Flight{Code: "X1", Route: "A->B", DepartureTime: "25:00", DepartureDate: "18/10/2026"}, "departure_time"},
		{"bad date", flight.Flight{Code: "X1", Route: "A->B", DepartureTime: "10:00", DepartureDate: "2026-10-18"}, "departure_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.AddFlight(ctx, &tt.f)
			var ve skydesk.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("AddFlight = %v, want validation error on %s", err, tt.field)
			}
		})
	}
	if len(d.Flights()) != 0 {
		t.Error("invalid flights must not reach the inventory")
	}
}

func TestAddFlightReplaces(t *testing.T) {
	d, _ := newDesk(t)
	addFlight(t, d, "SD1", testNow.Add(time.Hour))
	addFlight(t, d, "SD1", testNow.Add(3*time.Hour))

	flights := d.Flights()
	if len(flights) != 1 {
		t.Fatalf("len = %d, want 1", len(flights))
	}
	if flights[0].DepartureTime != "15:00" {
		t.Errorf("departure = %s, want 15:00", flights[0].DepartureTime)
	}
}

func TestRemoveFlight(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	d, _ := newDesk(t, skydesk.WithPlugin(rec))
	addFlight(t, d, "SD2", testNow.Add(time.Hour))

	r, err := d.Book(ctx, selfBooking("SD2"))
	if err != nil {
		t.Fatal(err)
	}

	if err := d.RemoveFlight(ctx, "SD2"); err != nil {
		t.Fatalf("RemoveFlight: %v", err)
	}
	if _, ok := d.Flight("SD2"); ok {
		t.Error("removed flight still cached")
	}
	if departed, ok := rec.removed["SD2"]; !ok || departed {
		t.Errorf("removed hook = %v, %v", departed, ok)
	}
	if _, err := d.Reservation(ctx, r.Code); err != nil {
		t.Errorf("reservations outlive their flight: %v", err)
	}

	if err := d.RemoveFlight(ctx, "SD2"); !errors.Is(err, skydesk.ErrFlightNotFound) {
		t.Errorf("second RemoveFlight = %v, want ErrFlightNotFound", err)
	}
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t, skydesk.WithFlightCapacity(15))

	addFlight(t, d, "LATE", testNow.Add(5*time.Hour))
	addFlight(t, d, "CHK", testNow.Add(90*time.Minute))
	addFlight(t, d, "BRD", testNow.Add(10*time.Minute))
	addFlight(t, d, "DEP", testNow.Add(-10*time.Minute))
	addFlight(t, d, "GONE", testNow.Add(-45*time.Minute))

	for range 3 {
		if _, err := d.Book(ctx, selfBooking("BRD")); err != nil {
			t.Fatal(err)
		}
	}

	board, err := d.Board(ctx)
	if err != nil {
		t.Fatalf("Board: %v", err)
	}

	want := []struct {
		code   string
		status flight.Status
	}{
		{"GONE", flight.StatusDeparted},
		{"DEP", flight.StatusDeparting},
		{"BRD", flight.StatusBoarding},
		{"CHK", flight.StatusCheckIn},
		{"LATE", flight.StatusScheduled},
	}
	if len(board) != len(want) {
		t.Fatalf("board has %d rows, want %d", len(board), len(want))
	}
	for i, w := range want {
		if board[i].Flight.Code != w.code || board[i].Status != w.status {
			t.Errorf("row %d = %s %s, want %s %s", i, board[i].Flight.Code, board[i].Status, w.code, w.status)
		}
	}
	if got := board[2].Occupancy(); got != "3/15" {
		t.Errorf("BRD occupancy = %s, want 3/15", got)
	}
}

func TestBoardListsUndatedFlightsLast(t *testing.T) {
	ctx := context.Background()
	d, s := newDesk(t)
	addFlight(t, d, "DATED", testNow.Add(3*time.Hour))

	// Written straight to the store, as an external tool would.
	if err := s.PutFlight(ctx, &flight.Flight{Code: "NODATE", Route: "A->B", DepartureTime: "10:00"}); err != nil {
		t.Fatal(err)
	}

	board, err := d.Board(ctx)
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("board has %d rows, want 2", len(board))
	}
	if board[0].Flight.Code != "DATED" {
		t.Errorf("first row = %s, want DATED", board[0].Flight.Code)
	}
	if board[1].Flight.Code != "NODATE" || board[1].Status != flight.StatusScheduled {
		t.Errorf("last row = %s %s, want NODATE SCHEDULED", board[1].Flight.Code, board[1].Status)
	}
}

func TestSweepDeparted(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	d, _ := newDesk(t, skydesk.WithPlugin(rec))

	addFlight(t, d, "OLD", testNow.Add(-3*time.Hour))
	addFlight(t, d, "RECENT", testNow.Add(-90*time.Minute))
	addFlight(t, d, "NEXT", testNow.Add(time.Hour))

	removed, err := d.SweepDeparted(ctx)
	if err != nil {
		t.Fatalf("SweepDeparted: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := d.Flight("OLD"); ok {
		t.Error("OLD should be swept")
	}
	for _, code := range []string{"RECENT", "NEXT"} {
		if _, ok := d.Flight(code); !ok {
			t.Errorf("%s should stay scheduled", code)
		}
	}
	if departed := rec.removed["OLD"]; !departed {
		t.Error("sweep should report the flight as departed")
	}

	removed, err = d.SweepDeparted(ctx)
	if err != nil || removed != 0 {
		t.Errorf("second sweep = %d, %v", removed, err)
	}
}

func TestFlightsSnapshotIsSorted(t *testing.T) {
	d, _ := newDesk(t)
	for _, code := range []string{"SD30", "SD10", "SD20"} {
		addFlight(t, d, code, testNow.Add(time.Hour))
	}

	flights := d.Flights()
	for i, want := range []string{"SD10", "SD20", "SD30"} {
		if flights[i].Code != want {
			t.Errorf("flights[%d] = %s, want %s", i, flights[i].Code, want)
		}
	}
}
