package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/store"
	"github.com/xraph/skydesk/store/memory"
	"github.com/xraph/skydesk/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return memory.New() })
}

func TestRecordsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	a := &account.Account{ID: 1, Balance: 10}
	if err := s.PutAccount(ctx, a); err != nil {
		t.Fatal(err)
	}
	a.Balance = 999

	got, _ := s.GetAccount(ctx, 1)
	if got.Balance != 10 {
		t.Errorf("store shares state with caller: balance %d", got.Balance)
	}
	got.Balance = 500
	again, _ := s.GetAccount(ctx, 1)
	if again.Balance != 10 {
		t.Errorf("store shares state with reader: balance %d", again.Balance)
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.Close()

	if err := s.Ping(ctx); !errors.Is(err, skydesk.ErrStorageUnavailable) {
		t.Errorf("Ping = %v, want ErrStorageUnavailable", err)
	}
	if _, err := s.ReservationExists(ctx, "BK000000"); !errors.Is(err, skydesk.ErrStorageUnavailable) {
		t.Errorf("ReservationExists = %v, want ErrStorageUnavailable", err)
	}
}
