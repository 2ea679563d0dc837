package account

import "context"

// Store persists accounts. PutAccount replaces the whole row (upsert by id).
type Store interface {
	GetAccount(ctx context.Context, accountID int64) (*Account, error)
	PutAccount(ctx context.Context, a *Account) error
	TopAccounts(ctx context.Context, n int) ([]*Account, error)
}
