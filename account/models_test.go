package account_test

import (
	"testing"

	"github.com/xraph/skydesk/account"
)

func TestAccountMutations(t *testing.T) {
	tests := []struct {
		name        string
		start       account.Account
		apply       func(a *account.Account)
		wantBalance int64
		wantFlights int64
	}{
		{"credit fresh", account.Account{}, func(a *account.Account) { a.Credit(50) }, 50, 1},
		{"credit existing", account.Account{Balance: 100, Flights: 3}, func(a *account.Account) { a.Credit(25) }, 125, 4},
		{"debit partial", account.Account{Balance: 100, Flights: 2}, func(a *account.Account) { a.Debit(30) }, 70, 2},
		{"debit floors at zero", account.Account{Balance: 30, Flights: 1}, func(a *account.Account) { a.Debit(100) }, 0, 1},
		{"debit exact", account.Account{Balance: 30}, func(a *account.Account) { a.Debit(30) }, 0, 0},
		{"reset", account.Account{Balance: 500, Flights: 9}, func(a *account.Account) { a.Reset() }, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.start
			tt.apply(&a)
			if a.Balance != tt.wantBalance {
				t.Errorf("balance = %d, want %d", a.Balance, tt.wantBalance)
			}
			if a.Flights != tt.wantFlights {
				t.Errorf("flights = %d, want %d", a.Flights, tt.wantFlights)
			}
		})
	}
}

func TestClone(t *testing.T) {
	a := &account.Account{ID: 7, Balance: 10}
	c := a.Clone()
	c.Balance = 99
	if a.Balance != 10 {
		t.Errorf("clone shares state with original")
	}
	var nilAcct *account.Account
	if nilAcct.Clone() != nil {
		t.Error("nil clone should be nil")
	}
}
