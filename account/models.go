// Package account defines the points ledger record kept per user.
package account

import "time"

// Account is one user's points balance and completed-flight tally.
// ID is the platform's numeric user id.
type Account struct {
	ID        int64     `json:"id"`
	Balance   int64     `json:"balance"`
	Flights   int64     `json:"flights"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no state with a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Credit adds amount to the balance and counts one more completed flight.
func (a *Account) Credit(amount int64) {
	a.Balance += amount
	a.Flights++
}

// Debit subtracts amount from the balance. The balance never drops below zero.
func (a *Account) Debit(amount int64) {
	a.Balance = max(0, a.Balance-amount)
}

// Reset zeroes both the balance and the flight tally.
func (a *Account) Reset() {
	a.Balance = 0
	a.Flights = 0
}
