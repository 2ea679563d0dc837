package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/announcement"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/ticket"
)

// DefaultTimeout bounds a single hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages registered plugins. Hook implementations are cached by
// type at registration so dispatch never re-inspects plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	onInit                []OnInit
	onShutdown            []OnShutdown
	onPointsCredited      []OnPointsCredited
	onPointsDebited       []OnPointsDebited
	onPointsReset         []OnPointsReset
	onReservationCreated  []OnReservationCreated
	onReservationFailed   []OnReservationFailed
	onFlightAdded         []OnFlightAdded
	onFlightRemoved       []OnFlightRemoved
	onInventoryReloaded   []OnInventoryReloaded
	onTicketOpened        []OnTicketOpened
	onTicketClosed        []OnTicketClosed
	onAnnouncementCreated []OnAnnouncementCreated
	onAnnouncementUpdated []OnAnnouncementUpdated
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its hooks.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	var implemented []string
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		implemented = append(implemented, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		implemented = append(implemented, "OnShutdown")
	}
	if v, ok := p.(OnPointsCredited); ok {
		r.onPointsCredited = append(r.onPointsCredited, v)
		implemented = append(implemented, "OnPointsCredited")
	}
	if v, ok := p.(OnPointsDebited); ok {
		r.onPointsDebited = append(r.onPointsDebited, v)
		implemented = append(implemented, "OnPointsDebited")
	}
	if v, ok := p.(OnPointsReset); ok {
		r.onPointsReset = append(r.onPointsReset, v)
		implemented = append(implemented, "OnPointsReset")
	}
	if v, ok := p.(OnReservationCreated); ok {
		r.onReservationCreated = append(r.onReservationCreated, v)
		implemented = append(implemented, "OnReservationCreated")
	}
	if v, ok := p.(OnReservationFailed); ok {
		r.onReservationFailed = append(r.onReservationFailed, v)
		implemented = append(implemented, "OnReservationFailed")
	}
	if v, ok := p.(OnFlightAdded); ok {
		r.onFlightAdded = append(r.onFlightAdded, v)
		implemented = append(implemented, "OnFlightAdded")
	}
	if v, ok := p.(OnFlightRemoved); ok {
		r.onFlightRemoved = append(r.onFlightRemoved, v)
		implemented = append(implemented, "OnFlightRemoved")
	}
	if v, ok := p.(OnInventoryReloaded); ok {
		r.onInventoryReloaded = append(r.onInventoryReloaded, v)
		implemented = append(implemented, "OnInventoryReloaded")
	}
	if v, ok := p.(OnTicketOpened); ok {
		r.onTicketOpened = append(r.onTicketOpened, v)
		implemented = append(implemented, "OnTicketOpened")
	}
	if v, ok := p.(OnTicketClosed); ok {
		r.onTicketClosed = append(r.onTicketClosed, v)
		implemented = append(implemented, "OnTicketClosed")
	}
	if v, ok := p.(OnAnnouncementCreated); ok {
		r.onAnnouncementCreated = append(r.onAnnouncementCreated, v)
		implemented = append(implemented, "OnAnnouncementCreated")
	}
	if v, ok := p.(OnAnnouncementUpdated); ok {
		r.onAnnouncementUpdated = append(r.onAnnouncementUpdated, v)
		implemented = append(implemented, "OnAnnouncementUpdated")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"hooks", implemented,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, desk any) {
	emit(r, ctx, "OnInit", hooks(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, desk)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(r, ctx, "OnShutdown", hooks(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitPointsCredited emits a points credited event.
func (r *Registry) EmitPointsCredited(ctx context.Context, acct *account.Account, amount int64) {
	emit(r, ctx, "OnPointsCredited", hooks(r, &r.onPointsCredited), func(p OnPointsCredited) error {
		return p.OnPointsCredited(ctx, acct.Clone(), amount)
	})
}

// EmitPointsDebited emits a points debited event.
func (r *Registry) EmitPointsDebited(ctx context.Context, acct *account.Account, requested, applied int64) {
	emit(r, ctx, "OnPointsDebited", hooks(r, &r.onPointsDebited), func(p OnPointsDebited) error {
		return p.OnPointsDebited(ctx, acct.Clone(), requested, applied)
	})
}

// EmitPointsReset emits a points reset event.
func (r *Registry) EmitPointsReset(ctx context.Context, acct *account.Account) {
	emit(r, ctx, "OnPointsReset", hooks(r, &r.onPointsReset), func(p OnPointsReset) error {
		return p.OnPointsReset(ctx, acct.Clone())
	})
}

// EmitReservationCreated emits a reservation created event.
func (r *Registry) EmitReservationCreated(ctx context.Context, res *reservation.Reservation) {
	emit(r, ctx, "OnReservationCreated", hooks(r, &r.onReservationCreated), func(p OnReservationCreated) error {
		return p.OnReservationCreated(ctx, res.Clone())
	})
}

// EmitReservationFailed emits a rejected booking event.
func (r *Registry) EmitReservationFailed(ctx context.Context, flightCode string, bookedBy int64, cause error) {
	emit(r, ctx, "OnReservationFailed", hooks(r, &r.onReservationFailed), func(p OnReservationFailed) error {
		return p.OnReservationFailed(ctx, flightCode, bookedBy, cause)
	})
}

// EmitFlightAdded emits a flight scheduled event.
func (r *Registry) EmitFlightAdded(ctx context.Context, f *flight.Flight) {
	emit(r, ctx, "OnFlightAdded", hooks(r, &r.onFlightAdded), func(p OnFlightAdded) error {
		c := *f
		return p.OnFlightAdded(ctx, &c)
	})
}

// EmitFlightRemoved emits a flight removed event.
func (r *Registry) EmitFlightRemoved(ctx context.Context, f *flight.Flight, departed bool) {
	emit(r, ctx, "OnFlightRemoved", hooks(r, &r.onFlightRemoved), func(p OnFlightRemoved) error {
		c := *f
		return p.OnFlightRemoved(ctx, &c, departed)
	})
}

// EmitInventoryReloaded emits an inventory reload event.
func (r *Registry) EmitInventoryReloaded(ctx context.Context, count int) {
	emit(r, ctx, "OnInventoryReloaded", hooks(r, &r.onInventoryReloaded), func(p OnInventoryReloaded) error {
		return p.OnInventoryReloaded(ctx, count)
	})
}

// EmitTicketOpened emits a ticket opened event.
func (r *Registry) EmitTicketOpened(ctx context.Context, t *ticket.Ticket) {
	emit(r, ctx, "OnTicketOpened", hooks(r, &r.onTicketOpened), func(p OnTicketOpened) error {
		return p.OnTicketOpened(ctx, t.Clone())
	})
}

// EmitTicketClosed emits a ticket closed event.
func (r *Registry) EmitTicketClosed(ctx context.Context, t *ticket.Ticket) {
	emit(r, ctx, "OnTicketClosed", hooks(r, &r.onTicketClosed), func(p OnTicketClosed) error {
		return p.OnTicketClosed(ctx, t.Clone())
	})
}

// EmitAnnouncementCreated emits an announcement created event.
func (r *Registry) EmitAnnouncementCreated(ctx context.Context, a *announcement.Announcement) {
	emit(r, ctx, "OnAnnouncementCreated", hooks(r, &r.onAnnouncementCreated), func(p OnAnnouncementCreated) error {
		return p.OnAnnouncementCreated(ctx, a.Clone())
	})
}

// EmitAnnouncementUpdated emits an announcement updated event.
func (r *Registry) EmitAnnouncementUpdated(ctx context.Context, a *announcement.Announcement) {
	emit(r, ctx, "OnAnnouncementUpdated", hooks(r, &r.onAnnouncementUpdated), func(p OnAnnouncementUpdated) error {
		return p.OnAnnouncementUpdated(ctx, a.Clone())
	})
}

// ──────────────────────────────────────────────────
// Dispatch helpers
// ──────────────────────────────────────────────────

// hooks reads a cached hook list under the read lock.
func hooks[T Plugin](r *Registry, list *[]T) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *list
}

// emit calls each hook in registration order. Failures are logged and
// never reach the caller.
func emit[T Plugin](r *Registry, ctx context.Context, hook string, plugins []T, call func(T) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins never block the engine for longer than the registry timeout.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("plugin panic: %s: %v", pluginName, rec)
			}
		}()
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
