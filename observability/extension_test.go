package observability_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/observability"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store/memory"
)

var testNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*skydesk.Desk, *observability.MetricsExtension, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	ext := observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))
	d := skydesk.New(memory.New(),
		skydesk.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		skydesk.WithSweepInterval(0),
		skydesk.WithClock(func() time.Time { return testNow }),
		skydesk.WithFlightCapacity(1),
		skydesk.WithCapacityPolicy(reservation.CapacityEnforced),
		skydesk.WithPlugin(ext),
	)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Stop() })
	return d, ext, reg
}

func TestPointsMetrics(t *testing.T) {
	d, ext, _ := setup(t)
	ctx := context.Background()

	if _, err := d.Credit(ctx, 1, 100); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if _, err := d.Debit(ctx, 1, 40); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if _, err := d.Debit(ctx, 1, 500); err != nil {
		t.Fatalf("Debit: %v", err)
	}

	tests := []struct {
		name string
		c    observability.Counter
		want float64
	}{
		{"credited", ext.PointsCredited, 100},
		{"debited", ext.PointsDebited, 100},
		{"floored", ext.DebitsFloored, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testutil.ToFloat64(tt.c.(prometheus.Counter))
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBookingMetrics(t *testing.T) {
	d, ext, _ := setup(t)
	ctx := context.Background()

	dep := testNow.Add(4 * time.Hour)
	if err := d.AddFlight(ctx, &flight.Flight{
		Code:          "SK101",
		Route:         "LHR->JFK",
		Aircraft:      "A350-1000",
		DepartureDate: dep.Format(flight.DateLayout),
		DepartureTime: dep.Format(flight.TimeLayout),
	}); err != nil {
		t.Fatalf("AddFlight: %v", err)
	}

	req := skydesk.BookingRequest{
		FlightCode:   "SK101",
		Cabin:        reservation.CabinEconomy,
		HolderKind:   reservation.HolderSelf,
		HolderHandle: "Captain_Kim",
		BookedBy:     123456789012345678,
	}
	if _, err := d.Book(ctx, req); err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := d.Book(ctx, req); err == nil {
		t.Fatal("expected the second booking to hit capacity")
	}

	if got := testutil.ToFloat64(ext.ReservationsCreated.(prometheus.Counter)); got != 1 {
		t.Errorf("created: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(ext.FlightsFull.(prometheus.Counter)); got != 1 {
		t.Errorf("flight_full: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(ext.FlightsAdded.(prometheus.Counter)); got != 1 {
		t.Errorf("flights added: expected 1, got %v", got)
	}
}

func TestPrometheusFactoryNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := observability.NewPrometheusFactory(reg)

	a := f.Counter("skydesk.points.credited")
	b := f.Counter("skydesk.points.credited")
	a.Inc()
	b.Inc()
	f.Histogram("skydesk.inventory.size").Observe(3)

	n, err := testutil.GatherAndCount(reg, "skydesk_points_credited_total", "skydesk_inventory_size")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 metric families, got %d", n)
	}
	if got := testutil.ToFloat64(a.(prometheus.Counter)); got != 2 {
		t.Errorf("expected shared counter at 2, got %v", got)
	}
}

func TestFactoriesShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewPrometheusFactory(reg).Counter("skydesk.ticket.opened").Inc()
	c := observability.NewPrometheusFactory(reg).Counter("skydesk.ticket.opened")
	c.Inc()

	if got := testutil.ToFloat64(c.(prometheus.Counter)); got != 2 {
		t.Errorf("expected the existing collector to be reused, got %v", got)
	}
}
