package skydesk_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/xraph/skydesk"
)

func TestCredit(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	d, _ := newDesk(t, skydesk.WithPlugin(rec))

	acct, err := d.Credit(ctx, 42, 50)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if acct.Balance != 50 || acct.Flights != 1 {
		t.Errorf("after first credit = %d/%d, want 50/1", acct.Balance, acct.Flights)
	}

	acct, err = d.Credit(ctx, 42, 25)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if acct.Balance != 75 || acct.Flights != 2 {
		t.Errorf("after second credit = %d/%d, want 75/2", acct.Balance, acct.Flights)
	}

	stored, err := d.Balance(ctx, 42)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if stored.Balance != 75 || stored.Flights != 2 {
		t.Errorf("stored = %d/%d, want 75/2", stored.Balance, stored.Flights)
	}
	if len(rec.credited) != 2 || rec.credited[1] != 75 {
		t.Errorf("credited hooks = %v", rec.credited)
	}
}

func TestCreditRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	for _, amount := range []int64{0, -1, math.MinInt64} {
		if _, err := d.Credit(ctx, 7, amount); !errors.Is(err, skydesk.ErrInvalidAmount) {
			t.Errorf("Credit(%d) = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if _, err := d.Balance(ctx, 7); !errors.Is(err, skydesk.ErrAccountNotFound) {
		t.Errorf("rejected credits must not create a record, Balance = %v", err)
	}
}

func TestCreditOverflow(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	if _, err := d.Credit(ctx, 1, math.MaxInt64); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	_, err := d.Credit(ctx, 1, 1)
	if !skydesk.IsValidation(err) {
		t.Errorf("overflowing credit = %v, want validation error", err)
	}
	acct, _ := d.Balance(ctx, 1)
	if acct.Balance != math.MaxInt64 || acct.Flights != 1 {
		t.Errorf("overflowing credit changed the account: %+v", acct)
	}
}

func TestDebit(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	d, _ := newDesk(t, skydesk.WithPlugin(rec))

	if _, err := d.Debit(ctx, 9, 10); !errors.Is(err, skydesk.ErrAccountNotFound) {
		t.Fatalf("Debit on missing account = %v, want ErrAccountNotFound", err)
	}

	if _, err := d.Credit(ctx, 9, 100); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		amount      int64
		wantBalance int64
		wantApplied int64
	}{
		{"partial", 30, 70, 30},
		{"exact", 70, 0, 70},
		{"below zero floors", 500, 0, 0},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := d.Debit(ctx, 9, tt.amount)
			if err != nil {
				t.Fatalf("Debit: %v", err)
			}
			if acct.Balance != tt.wantBalance {
				t.Errorf("balance = %d, want %d", acct.Balance, tt.wantBalance)
			}
			if acct.Flights != 1 {
				t.Errorf("debit changed flights to %d", acct.Flights)
			}
			if got := rec.debited[i]; got != [2]int64{tt.amount, tt.wantApplied} {
				t.Errorf("debited hook = %v, want [%d %d]", got, tt.amount, tt.wantApplied)
			}
		})
	}

	if _, err := d.Debit(ctx, 9, 0); !errors.Is(err, skydesk.ErrInvalidAmount) {
		t.Errorf("Debit(0) = %v, want ErrInvalidAmount", err)
	}
}

func TestDebitFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	if _, err := d.Credit(ctx, 5, 30); err != nil {
		t.Fatal(err)
	}
	acct, err := d.Debit(ctx, 5, 100)
	if err != nil {
		t.Fatal(err)
	}
	if acct.Balance != 0 || acct.Flights != 1 {
		t.Errorf("got %d/%d, want 0/1", acct.Balance, acct.Flights)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	acct, err := d.Reset(ctx, 3)
	if err != nil {
		t.Fatalf("Reset on missing account: %v", err)
	}
	if acct.Balance != 0 || acct.Flights != 0 {
		t.Errorf("reset = %+v", acct)
	}
	if _, err := d.Balance(ctx, 3); err != nil {
		t.Errorf("Reset should create the record: %v", err)
	}

	_, _ = d.Credit(ctx, 3, 500)
	_, _ = d.Credit(ctx, 3, 500)
	if _, err := d.Reset(ctx, 3); err != nil {
		t.Fatal(err)
	}
	acct, _ = d.Balance(ctx, 3)
	if acct.Balance != 0 || acct.Flights != 0 {
		t.Errorf("after reset = %d/%d", acct.Balance, acct.Flights)
	}
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	for id, amount := range map[int64]int64{1: 300, 2: 500, 3: 300, 4: 100} {
		if _, err := d.Credit(ctx, id, amount); err != nil {
			t.Fatal(err)
		}
	}

	top, err := d.Leaderboard(ctx, 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []int64{2, 1, 3}
	if len(top) != len(want) {
		t.Fatalf("len = %d, want %d", len(top), len(want))
	}
	for i, id := range want {
		if top[i].ID != id {
			t.Errorf("rank %d = account %d, want %d", i+1, top[i].ID, id)
		}
	}

	all, _ := d.Leaderboard(ctx, 10)
	if len(all) != 4 {
		t.Errorf("len = %d, want 4", len(all))
	}
	none, err := d.Leaderboard(ctx, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("Leaderboard(0) = %v, %v", none, err)
	}
}

func TestConcurrentCreditsAreSerialized(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)

	const workers = 100
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Credit(ctx, 77, 10); err != nil {
				t.Errorf("Credit: %v", err)
			}
		}()
	}
	wg.Wait()

	acct, err := d.Balance(ctx, 77)
	if err != nil {
		t.Fatal(err)
	}
	if acct.Balance != workers*10 || acct.Flights != workers {
		t.Errorf("got %d/%d, want %d/%d", acct.Balance, acct.Flights, workers*10, workers)
	}
}

func TestConcurrentCreditAndDebit(t *testing.T) {
	ctx := context.Background()
	d, _ := newDesk(t)
	if _, err := d.Credit(ctx, 8, 1000); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = d.Credit(ctx, 8, 10)
		}()
		go func() {
			defer wg.Done()
			_, _ = d.Debit(ctx, 8, 10)
		}()
	}
	wg.Wait()

	acct, _ := d.Balance(ctx, 8)
	if acct.Balance != 1000 || acct.Flights != 51 {
		t.Errorf("got %d/%d, want 1000/51", acct.Balance, acct.Flights)
	}
}

func TestConcurrentCreditsOverSQLite(t *testing.T) {
	ctx := context.Background()
	d := newSQLiteDesk(t)

	const (
		account = 42
		workers = 40
	)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Credit(ctx, account, 5); err != nil {
				t.Errorf("Credit: %v", err)
			}
		}()
	}
	wg.Wait()

	acct, err := d.Balance(ctx, account)
	if err != nil {
		t.Fatal(err)
	}
	if acct.Balance != workers*5 || acct.Flights != workers {
		t.Errorf("got %d/%d, want %d/%d", acct.Balance, acct.Flights, workers*5, workers)
	}

	acct, err = d.Debit(ctx, account, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if acct.Balance != 0 || acct.Flights != workers {
		t.Errorf("after debit got %d/%d, want 0/%d", acct.Balance, acct.Flights, workers)
	}

	top, err := d.Leaderboard(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].ID != account || top[0].Balance != 0 || top[0].Flights != workers {
		t.Errorf("leaderboard = %+v", top)
	}
}
