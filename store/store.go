// Package store defines the aggregate persistence interface that every
// skydesk backend implements.
package store

import (
	"context"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
)

// Store is the unified storage interface for all skydesk records.
// Every mutating method commits before it returns.
type Store interface {
	account.Store
	reservation.Store
	flight.Store
	ticket.Store
	announcement.Store

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
