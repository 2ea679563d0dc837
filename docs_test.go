package skydesk_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store/sqlite"
)

// TestDocumentationExamples runs the package documentation walkthrough.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		s, err := sqlite.Open(filepath.Join(t.TempDir(), "skydesk.db"))
		if err != nil {
			t.Fatal(err)
		}

		desk := skydesk.New(s,
			skydesk.WithLogger(slog.New(slog.DiscardHandler)),
			skydesk.WithSweepInterval(0),
		)
		ctx := context.Background()
		if err := desk.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer desk.Stop()

		const userID = 123456789012345678

		// Points
		if _, err := desk.Credit(ctx, userID, 250); err != nil {
			t.Fatal(err)
		}
		acct, err := desk.Debit(ctx, userID, 1000)
		if err != nil {
			t.Fatal(err)
		}
		if acct.Balance != 0 {
			t.Errorf("expected balance 0, got %d", acct.Balance)
		}

		// Reservations
		dep := time.Now().UTC().Add(24 * time.Hour)
		if err := desk.AddFlight(ctx, &flight.Flight{
			Code:          "SD101",
			Route:         "LHR->JFK",
			Aircraft:      "B787-9",
			DepartureDate: dep.Format(flight.DateLayout),
			DepartureTime: dep.Format(flight.TimeLayout),
		}); err != nil {
			t.Fatal(err)
		}

		r, err := desk.Book(ctx, skydesk.BookingRequest{
			FlightCode:   "SD101",
			Cabin:        reservation.CabinBusiness,
			HolderKind:   reservation.HolderSelf,
			HolderHandle: "captain_kim",
			BookedBy:     userID,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !reservation.ValidCode(r.Code) {
			t.Errorf("unexpected code %q", r.Code)
		}

		_, err = desk.Reserve(ctx, r.Code, skydesk.BookingRequest{
			FlightCode:   "SD101",
			Cabin:        reservation.CabinEconomy,
			HolderKind:   reservation.HolderSelf,
			HolderHandle: "captain_kim",
			BookedBy:     userID,
		})
		if !errors.Is(err, skydesk.ErrDuplicateCode) || !skydesk.IsRetryable(err) {
			t.Errorf("expected a retryable ErrDuplicateCode, got %v", err)
		}
	})
}
