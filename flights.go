package skydesk

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/skydesk/flight"
)

// ──────────────────────────────────────────────────
// Flight inventory
// ──────────────────────────────────────────────────

// ReloadFlights replaces the inventory cache with the stored schedule and
// returns the number of flights loaded.
func (d *Desk) ReloadFlights(ctx context.Context) (int, error) {
	flights, err := d.store.ListFlights(ctx)
	if err != nil {
		return 0, storageErr(err)
	}
	d.inventory.Replace(flights)
	d.plugins.EmitInventoryReloaded(ctx, len(flights))
	return len(flights), nil
}

// Flights returns the cached inventory ordered by flight code.
func (d *Desk) Flights() []flight.Flight {
	return d.inventory.Snapshot()
}

// Flight looks up a cached flight.
func (d *Desk) Flight(code string) (flight.Flight, bool) {
	return d.inventory.Lookup(code)
}

// EvictFlight drops a flight from the cache without touching the schedule.
// New bookings for it fail with ErrFlightNotFound until the next reload.
func (d *Desk) EvictFlight(code string) bool {
	return d.inventory.Remove(code)
}

func validateFlight(f *flight.Flight) error {
	f.Code = strings.TrimSpace(f.Code)
	f.Route = strings.TrimSpace(f.Route)
	f.Aircraft = strings.TrimSpace(f.Aircraft)
	switch {
	case f.Code == "":
		return ValidationError{Field: "code", Message: "is required"}
	case f.Route == "":
		return ValidationError{Field: "route", Message: "is required"}
	case !flight.ValidTime(f.DepartureTime):
		return ValidationError{Field: "departure_time", Message: "must be HH:MM"}
	case !flight.ValidDate(f.DepartureDate):
		return ValidationError{Field: "departure_date", Message: "must be DD/MM/YYYY"}
	}
	return nil
}

// AddFlight schedules f (or replaces the flight with the same code) and
// makes it bookable.
func (d *Desk) AddFlight(ctx context.Context, f *flight.Flight) error {
	ctx, span := d.tracer.Start(ctx, "skydesk.AddFlight", trace.WithAttributes(
		attribute.String("flight.code", f.Code),
	))
	defer span.End()

	if err := validateFlight(f); err != nil {
		return d.fail(span, "add_flight", err, "flight", f.Code)
	}

	err := func() error {
		d.scheduleMu.Lock()
		defer d.scheduleMu.Unlock()

		if err := d.store.PutFlight(ctx, f); err != nil {
			return storageErr(err)
		}
		d.inventory.Put(*f)
		return nil
	}()
	if err != nil {
		return d.fail(span, "add_flight", err, "flight", f.Code)
	}

	d.plugins.EmitFlightAdded(ctx, f)
	return nil
}

// RemoveFlight deletes a flight from the schedule and the cache.
// Existing reservations are kept.
func (d *Desk) RemoveFlight(ctx context.Context, code string) error {
	ctx, span := d.tracer.Start(ctx, "skydesk.RemoveFlight", trace.WithAttributes(
		attribute.String("flight.code", code),
	))
	defer span.End()

	f, err := d.removeFlight(ctx, code)
	if err != nil {
		return d.fail(span, "remove_flight", err, "flight", code)
	}

	d.plugins.EmitFlightRemoved(ctx, f, false)
	return nil
}

func (d *Desk) removeFlight(ctx context.Context, code string) (*flight.Flight, error) {
	d.scheduleMu.Lock()
	defer d.scheduleMu.Unlock()

	f, err := d.store.GetFlight(ctx, code)
	if err != nil {
		if errors.Is(err, ErrFlightNotFound) {
			d.inventory.Remove(code)
		}
		return nil, storageErr(err)
	}
	if err := d.store.DeleteFlight(ctx, code); err != nil {
		return nil, storageErr(err)
	}
	d.inventory.Remove(code)
	return f, nil
}

// Board returns the departure board: every stored flight ordered by
// departure, with its status and occupancy against capacity. Rows whose
// schedule does not parse read as SCHEDULED and sort last.
func (d *Desk) Board(ctx context.Context) ([]flight.BoardEntry, error) {
	flights, err := d.store.ListFlights(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	now := d.now().UTC()
	entries := make([]flight.BoardEntry, 0, len(flights))
	for _, f := range flights {
		booked, err := d.store.CountReservations(ctx, f.Code)
		if err != nil {
			return nil, storageErr(err)
		}
		entries = append(entries, flight.BoardEntry{
			Flight:     *f,
			Status:     f.StatusAt(now),
			Passengers: booked,
			Capacity:   d.capacity,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ti, erri := entries[i].Flight.Departure()
		tj, errj := entries[j].Flight.Departure()
		switch {
		case erri != nil && errj != nil:
			return entries[i].Flight.Code < entries[j].Flight.Code
		case erri != nil:
			return false
		case errj != nil:
			return true
		case !ti.Equal(tj):
			return ti.Before(tj)
		default:
			return entries[i].Flight.Code < entries[j].Flight.Code
		}
	})
	return entries, nil
}

// SweepDeparted removes every flight whose departure lies more than the
// departed grace in the past. It returns how many were removed; failures
// for individual flights are collected in a MultiError.
func (d *Desk) SweepDeparted(ctx context.Context) (int, error) {
	flights, err := d.store.ListFlights(ctx)
	if err != nil {
		return 0, storageErr(err)
	}

	now := d.now().UTC()
	var errs MultiError
	removed := 0
	for _, f := range flights {
		dep, err := f.Departure()
		if err != nil || now.Sub(dep) <= d.departedGrace {
			continue
		}
		gone, err := d.removeFlight(ctx, f.Code)
		if err != nil {
			if !errors.Is(err, ErrFlightNotFound) {
				errs.Add(err)
			}
			continue
		}
		removed++
		d.plugins.EmitFlightRemoved(ctx, gone, true)
	}
	return removed, errs.ErrorOrNil()
}
