package reservation

import "context"

// Store persists reservations. InsertReservation never overwrites: a code
// that already exists fails with the duplicate-code error.
type Store interface {
	InsertReservation(ctx context.Context, r *Reservation) error
	GetReservation(ctx context.Context, code string) (*Reservation, error)
	ReservationExists(ctx context.Context, code string) (bool, error)
	CountReservations(ctx context.Context, flightCode string) (int, error)
	ListReservations(ctx context.Context, opts ListOpts) ([]*Reservation, error)
}
