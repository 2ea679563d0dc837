package flight

import "context"

// Store persists the flight schedule.
type Store interface {
	ListFlights(ctx context.Context) ([]*Flight, error)
	GetFlight(ctx context.Context, code string) (*Flight, error)
	PutFlight(ctx context.Context, f *Flight) error
	DeleteFlight(ctx context.Context, code string) error
}
