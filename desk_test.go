package skydesk_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/store/memory"
	"github.com/xraph/skydesk/store/sqlite"
)

var testNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDesk(t *testing.T, opts ...skydesk.Option) (*skydesk.Desk, *memory.Store) {
	t.Helper()

	s := memory.New()
	return startDesk(t, s, opts...), s
}

// newSQLiteDesk runs the desk over a file-backed SQLite store in a temp dir.
func newSQLiteDesk(t *testing.T, opts ...skydesk.Option) *skydesk.Desk {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "skydesk.db"))
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	return startDesk(t, s, opts...)
}

func startDesk(t *testing.T, s store.Store, opts ...skydesk.Option) *skydesk.Desk {
	t.Helper()

	base := []skydesk.Option{
		skydesk.WithLogger(quietLogger()),
		skydesk.WithSweepInterval(0),
		skydesk.WithClock(func() time.Time { return testNow }),
	}
	d := skydesk.New(s, append(base, opts...)...)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = d.Stop() })
	return d
}

func addFlight(t *testing.T, d *skydesk.Desk, code string, departure time.Time) {
	t.Helper()

	err := d.AddFlight(context.Background(), &flight.Flight{
		Code:          code,
		Route:         "LHR->JFK",
		Aircraft:      "A350-1000",
		DepartureDate: departure.Format(flight.DateLayout),
		DepartureTime: departure.Format(flight.TimeLayout),
	})
	if err != nil {
		t.Fatalf("AddFlight(%s): %v", code, err)
	}
}

// recorder captures hook calls for assertions.
type recorder struct {
	mu       sync.Mutex
	inits    int
	credited []int64
	debited  [][2]int64
	booked   []string
	failed   []error
	removed  map[string]bool
	reloads  []int
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) OnInit(context.Context, any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inits++
	return nil
}

func (r *recorder) OnPointsCredited(_ context.Context, acct *account.Account, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credited = append(r.credited, acct.Balance)
	return nil
}

func (r *recorder) OnPointsDebited(_ context.Context, _ *account.Account, requested, applied int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debited = append(r.debited, [2]int64{requested, applied})
	return nil
}

func (r *recorder) OnReservationCreated(_ context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = append(r.booked, res.Code)
	return nil
}

func (r *recorder) OnReservationFailed(_ context.Context, _ string, _ int64, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
	return nil
}

func (r *recorder) OnFlightRemoved(_ context.Context, f *flight.Flight, departed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removed == nil {
		r.removed = make(map[string]bool)
	}
	r.removed[f.Code] = departed
	return nil
}

func (r *recorder) OnInventoryReloaded(_ context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads = append(r.reloads, count)
	return nil
}

func TestStartLoadsInventory(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := s.PutFlight(ctx, &flight.Flight{Code: "SD1", Route: "A->B", DepartureDate: "18/10/2026", DepartureTime: "10:00"}); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	d := skydesk.New(s,
		skydesk.WithLogger(quietLogger()),
		skydesk.WithSweepInterval(0),
		skydesk.WithPlugin(rec),
	)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if _, ok := d.Flight("SD1"); !ok {
		t.Error("SD1 should be cached after Start")
	}
	if err := d.Start(ctx); err != nil {
		t.Errorf("second Start: %v", err)
	}
	if rec.inits != 1 {
		t.Errorf("OnInit called %d times, want 1", rec.inits)
	}
	if len(rec.reloads) != 1 || rec.reloads[0] != 1 {
		t.Errorf("reloads = %v, want [1]", rec.reloads)
	}
}

func TestStopClosesStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	d := skydesk.New(s, skydesk.WithLogger(quietLogger()), skydesk.WithSweepInterval(time.Hour))
	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	_, err := d.Credit(ctx, 1, 10)
	if !errors.Is(err, skydesk.ErrStorageUnavailable) {
		t.Errorf("Credit after Stop = %v, want ErrStorageUnavailable", err)
	}
	if !skydesk.IsRetryable(err) {
		t.Error("storage failures should be retryable")
	}
}

func TestSweepWorkerRemovesDepartedFlights(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	past := testNow.Add(-3 * time.Hour)
	_ = s.PutFlight(ctx, &flight.Flight{
		Code:          "OLD",
		Route:         "A->B",
		DepartureDate: past.Format(flight.DateLayout),
		DepartureTime: past.Format(flight.TimeLayout),
	})

	d := skydesk.New(s,
		skydesk.WithLogger(quietLogger()),
		skydesk.WithClock(func() time.Time { return testNow }),
		skydesk.WithSweepInterval(10*time.Millisecond),
	)
	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := d.Flight("OLD"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sweeper did not remove the departed flight")
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		retryable  bool
		validation bool
	}{
		{"account", skydesk.ErrAccountNotFound, true, false, false},
		{"flight", skydesk.ErrFlightNotFound, true, false, false},
		{"duplicate", skydesk.ErrDuplicateCode, false, true, false},
		{"exhausted", skydesk.ErrCodeGenerationExhausted, false, true, false},
		{"amount", skydesk.ErrInvalidAmount, false, false, true},
		{"validation", skydesk.ValidationError{Field: "cabin", Message: "bad"}, false, false, true},
		{"storage", skydesk.ErrStorageUnavailable, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := skydesk.IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v", got)
			}
			if got := skydesk.IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable = %v", got)
			}
			if got := skydesk.IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation = %v", got)
			}
		})
	}
}

func TestMultiError(t *testing.T) {
	var m skydesk.MultiError
	if m.ErrorOrNil() != nil {
		t.Error("empty MultiError should be nil")
	}
	m.Add(nil)
	m.Add(skydesk.ErrFlightNotFound)
	m.Add(skydesk.ErrStorageUnavailable)
	err := m.ErrorOrNil()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, skydesk.ErrStorageUnavailable) {
		t.Error("MultiError should unwrap to its members")
	}
	if err.Error() != "skydesk: 2 errors occurred" {
		t.Errorf("Error() = %q", err.Error())
	}
}
