package skydesk

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/skydesk/reservation"
)

// ──────────────────────────────────────────────────
// Reservations
// ──────────────────────────────────────────────────

// BookingRequest describes a seat to reserve.
type BookingRequest struct {
	FlightCode   string
	Cabin        reservation.Cabin
	HolderKind   reservation.HolderKind
	HolderHandle string
	// HolderID is the traveller's platform id. It is ignored for
	// HolderSelf, where the booker travels.
	HolderID int64
	BookedBy int64
}

func (req *BookingRequest) normalize() error {
	req.FlightCode = strings.TrimSpace(req.FlightCode)
	if req.FlightCode == "" {
		return ValidationError{Field: "flight_code", Message: "is required"}
	}

	cabin, ok := reservation.ParseCabin(string(req.Cabin))
	if !ok {
		return ValidationError{Field: "cabin", Message: "unknown cabin"}
	}
	req.Cabin = cabin

	if req.BookedBy <= 0 {
		return ValidationError{Field: "booked_by", Message: "is required"}
	}

	req.HolderHandle = strings.TrimSpace(req.HolderHandle)
	if !reservation.ValidHandle(req.HolderHandle) {
		return ValidationError{Field: "holder_handle", Message: "must be 3-20 letters, digits or underscores"}
	}

	switch req.HolderKind {
	case reservation.HolderSelf:
		req.HolderID = req.BookedBy
	case reservation.HolderOther:
		if _, ok := reservation.ParsePlatformID(strconv.FormatInt(req.HolderID, 10)); !ok {
			return ValidationError{Field: "holder_id", Message: "must be a 17-19 digit platform id"}
		}
	default:
		return ValidationError{Field: "holder_kind", Message: "must be myself or other"}
	}
	return nil
}

// GenerateCode returns a booking code that no stored reservation uses.
// Up to the configured number of candidates are tried before
// ErrCodeGenerationExhausted. The code is not reserved: Book holds the
// booking lock across generation and insert, which this call cannot.
func (d *Desk) GenerateCode(ctx context.Context) (string, error) {
	d.bookingMu.Lock()
	defer d.bookingMu.Unlock()

	return d.uniqueCode(ctx)
}

func (d *Desk) uniqueCode(ctx context.Context) (string, error) {
	for range d.codeAttempts {
		code := d.codes.NewCode()
		exists, err := d.store.ReservationExists(ctx, code)
		if err != nil {
			return "", storageErr(err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// Book reserves a seat on a cached flight under a freshly generated code.
// Code generation and insert happen under one lock, so concurrent bookings
// never race for the same code. A collision that still reaches the store
// surfaces as ErrDuplicateCode and is not retried here.
func (d *Desk) Book(ctx context.Context, req BookingRequest) (*reservation.Reservation, error) {
	return d.reserve(ctx, "", req)
}

// Reserve inserts a reservation under a caller-chosen code, typically one
// obtained from GenerateCode. It fails with ErrDuplicateCode when the code
// is taken.
func (d *Desk) Reserve(ctx context.Context, code string, req BookingRequest) (*reservation.Reservation, error) {
	if !reservation.ValidCode(code) {
		return nil, ValidationError{Field: "code", Message: "must be BK followed by six letters or digits"}
	}
	return d.reserve(ctx, code, req)
}

func (d *Desk) reserve(ctx context.Context, code string, req BookingRequest) (*reservation.Reservation, error) {
	ctx, span := d.tracer.Start(ctx, "skydesk.Book", trace.WithAttributes(
		attribute.String("flight.code", req.FlightCode),
		attribute.Int64("booking.booked_by", req.BookedBy),
	))
	defer span.End()

	if err := req.normalize(); err != nil {
		d.plugins.EmitReservationFailed(ctx, req.FlightCode, req.BookedBy, err)
		return nil, d.fail(span, "book", err, "flight", req.FlightCode, "booked_by", req.BookedBy)
	}

	r, err := func() (*reservation.Reservation, error) {
		d.bookingMu.Lock()
		defer d.bookingMu.Unlock()

		f, ok := d.inventory.Lookup(req.FlightCode)
		if !ok {
			return nil, ErrFlightNotFound
		}

		if d.capacityPolicy == reservation.CapacityEnforced {
			booked, err := d.store.CountReservations(ctx, f.Code)
			if err != nil {
				return nil, storageErr(err)
			}
			if booked >= d.capacity {
				return nil, ErrFlightFull
			}
		}

		if code == "" {
			var err error
			if code, err = d.uniqueCode(ctx); err != nil {
				return nil, err
			}
		}

		r := &reservation.Reservation{
			Code:          code,
			FlightCode:    f.Code,
			Route:         f.Route,
			Aircraft:      f.Aircraft,
			DepartureTime: f.DepartureTime,
			DepartureDate: f.DepartureDate,
			Cabin:         req.Cabin,
			HolderKind:    req.HolderKind,
			HolderHandle:  req.HolderHandle,
			HolderID:      req.HolderID,
			BookedBy:      req.BookedBy,
			CreatedAt:     d.now().UTC(),
		}
		if err := d.store.InsertReservation(ctx, r); err != nil {
			return nil, storageErr(err)
		}
		return r, nil
	}()
	if err != nil {
		d.plugins.EmitReservationFailed(ctx, req.FlightCode, req.BookedBy, err)
		return nil, d.fail(span, "book", err, "flight", req.FlightCode, "booked_by", req.BookedBy, "code", code)
	}

	span.SetAttributes(attribute.String("booking.code", r.Code))
	d.plugins.EmitReservationCreated(ctx, r)
	return r, nil
}

// Occupancy returns how many reservations reference flightCode.
func (d *Desk) Occupancy(ctx context.Context, flightCode string) (int, error) {
	n, err := d.store.CountReservations(ctx, flightCode)
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

// Reservation returns the reservation stored under code.
func (d *Desk) Reservation(ctx context.Context, code string) (*reservation.Reservation, error) {
	r, err := d.store.GetReservation(ctx, code)
	if err != nil {
		return nil, storageErr(err)
	}
	return r, nil
}

// Reservations lists reservations in booking order.
func (d *Desk) Reservations(ctx context.Context, opts reservation.ListOpts) ([]*reservation.Reservation, error) {
	rs, err := d.store.ListReservations(ctx, opts)
	if err != nil {
		return nil, storageErr(err)
	}
	return rs, nil
}
