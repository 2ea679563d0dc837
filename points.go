package skydesk

import (
	"context"
	"errors"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/skydesk/account"
)

// ──────────────────────────────────────────────────
// Points ledger
// ──────────────────────────────────────────────────

// Credit awards amount points to accountID and counts one completed flight.
// An account with no record starts from zero.
func (d *Desk) Credit(ctx context.Context, accountID, amount int64) (*account.Account, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.Credit", trace.WithAttributes(
		attribute.Int64("account.id", accountID),
		attribute.Int64("points.amount", amount),
	))
	defer span.End()

	if amount <= 0 {
		return nil, d.fail(span, "credit", ErrInvalidAmount, "account_id", accountID, "amount", amount)
	}

	acct, err := func() (*account.Account, error) {
		d.pointsMu.Lock()
		defer d.pointsMu.Unlock()

		acct, err := d.store.GetAccount(ctx, accountID)
		switch {
		case errors.Is(err, ErrAccountNotFound):
			acct = &account.Account{ID: accountID}
		case err != nil:
			return nil, storageErr(err)
		}

		if acct.Balance > math.MaxInt64-amount {
			return nil, ValidationError{Field: "amount", Message: "balance would overflow"}
		}
		acct.Credit(amount)
		acct.UpdatedAt = d.now().UTC()

		if err := d.store.PutAccount(ctx, acct); err != nil {
			return nil, storageErr(err)
		}
		return acct, nil
	}()
	if err != nil {
		return nil, d.fail(span, "credit", err, "account_id", accountID, "amount", amount)
	}

	span.SetAttributes(attribute.Int64("points.balance", acct.Balance))
	d.plugins.EmitPointsCredited(ctx, acct, amount)
	return acct, nil
}

// Debit deducts up to amount points from accountID. The balance is floored
// at zero and the flight tally is untouched.
func (d *Desk) Debit(ctx context.Context, accountID, amount int64) (*account.Account, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.Debit", trace.WithAttributes(
		attribute.Int64("account.id", accountID),
		attribute.Int64("points.amount", amount),
	))
	defer span.End()

	if amount <= 0 {
		return nil, d.fail(span, "debit", ErrInvalidAmount, "account_id", accountID, "amount", amount)
	}

	var applied int64
	acct, err := func() (*account.Account, error) {
		d.pointsMu.Lock()
		defer d.pointsMu.Unlock()

		acct, err := d.store.GetAccount(ctx, accountID)
		if err != nil {
			return nil, storageErr(err)
		}

		before := acct.Balance
		acct.Debit(amount)
		applied = before - acct.Balance
		acct.UpdatedAt = d.now().UTC()

		if err := d.store.PutAccount(ctx, acct); err != nil {
			return nil, storageErr(err)
		}
		return acct, nil
	}()
	if err != nil {
		return nil, d.fail(span, "debit", err, "account_id", accountID, "amount", amount)
	}

	span.SetAttributes(attribute.Int64("points.balance", acct.Balance))
	d.plugins.EmitPointsDebited(ctx, acct, amount, applied)
	return acct, nil
}

// Balance returns the account for accountID, or ErrAccountNotFound.
func (d *Desk) Balance(ctx context.Context, accountID int64) (*account.Account, error) {
	acct, err := d.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, storageErr(err)
	}
	return acct, nil
}

// Reset overwrites accountID with a zero balance and zero flights,
// creating the record when absent.
func (d *Desk) Reset(ctx context.Context, accountID int64) (*account.Account, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.Reset", trace.WithAttributes(
		attribute.Int64("account.id", accountID),
	))
	defer span.End()

	acct := &account.Account{ID: accountID}
	err := func() error {
		d.pointsMu.Lock()
		defer d.pointsMu.Unlock()

		acct.UpdatedAt = d.now().UTC()
		return storageErr(d.store.PutAccount(ctx, acct))
	}()
	if err != nil {
		return nil, d.fail(span, "reset", err, "account_id", accountID)
	}

	d.plugins.EmitPointsReset(ctx, acct)
	return acct, nil
}

// Leaderboard returns up to n accounts by balance, highest first. Equal
// balances are ordered by account id.
func (d *Desk) Leaderboard(ctx context.Context, n int) ([]*account.Account, error) {
	if n <= 0 {
		return []*account.Account{}, nil
	}
	accts, err := d.store.TopAccounts(ctx, n)
	if err != nil {
		return nil, storageErr(err)
	}
	return accts, nil
}
