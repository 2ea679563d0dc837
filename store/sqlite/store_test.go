package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/store/sqlite"
	"github.com/xraph/skydesk/store/storetest"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openStore(t, filepath.Join(t.TempDir(), "skydesk.db"))
	})
}

func TestCommittedWritesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "skydesk.db")

	s := openStore(t, path)
	if err := s.PutAccount(ctx, &account.Account{ID: 12, Balance: 250, Flights: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openStore(t, path)
	defer reopened.Close()

	a, err := reopened.GetAccount(ctx, 12)
	if err != nil {
		t.Fatalf("GetAccount after reopen: %v", err)
	}
	if a.Balance != 250 || a.Flights != 3 {
		t.Errorf("got %d/%d, want 250/3", a.Balance, a.Flights)
	}
}

func TestDSN(t *testing.T) {
	got := sqlite.DSN("/var/lib/skydesk.db")
	want := "file:/var/lib/skydesk.db?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_txlock=immediate"
	if got != want {
		t.Errorf("DSN = %q", got)
	}
}
