package skydesk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/plugin"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store"
)

// TracerName is the instrumentation scope used for engine spans.
const TracerName = "github.com/xraph/skydesk"

// Defaults applied by New.
const (
	DefaultCodeAttempts   = 10
	DefaultFlightCapacity = 15
	DefaultDepartedGrace  = 2 * time.Hour
	DefaultSweepInterval  = 10 * time.Minute
)

// Desk is the airline operations engine: the points ledger, reservations,
// the flight inventory, support tickets and boarding announcements.
//
// Each record family has one mutex held across its whole read-modify-write
// (or generate-and-insert) sequence, so concurrent commands against the same
// family are serialized while reads go straight to the store.
type Desk struct {
	store     store.Store
	plugins   *plugin.Registry
	logger    *slog.Logger
	tracer    trace.Tracer
	inventory *flight.Cache
	codes     reservation.Generator
	now       func() time.Time

	pointsMu        sync.Mutex
	bookingMu       sync.Mutex
	scheduleMu      sync.Mutex
	ticketsMu       sync.Mutex
	announcementsMu sync.Mutex

	// Background workers
	started  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	autoMigrate    bool
	codeAttempts   int
	capacity       int
	capacityPolicy reservation.CapacityPolicy
	departedGrace  time.Duration
	sweepInterval  time.Duration
}

// New creates a new Desk over s.
func New(s store.Store, opts ...Option) *Desk {
	d := &Desk{
		store:          s,
		plugins:        plugin.NewRegistry(),
		logger:         slog.Default(),
		tracer:         otel.Tracer(TracerName),
		inventory:      flight.NewCache(),
		codes:          reservation.RandomGenerator{},
		now:            time.Now,
		stopChan:       make(chan struct{}),
		autoMigrate:    true,
		codeAttempts:   DefaultCodeAttempts,
		capacity:       DefaultFlightCapacity,
		capacityPolicy: reservation.CapacityAdvisory,
		departedGrace:  DefaultDepartedGrace,
		sweepInterval:  DefaultSweepInterval,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Option configures a Desk instance.
type Option func(*Desk)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Desk) {
		d.logger = logger
		d.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(d *Desk) {
		if err := d.plugins.Register(p); err != nil {
			d.logger.Warn("plugin registration skipped", "plugin", p.Name(), "error", err)
		}
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(timeout time.Duration) Option {
	return func(d *Desk) { d.plugins.WithTimeout(timeout) }
}

// WithTracer sets the tracer used for engine spans.
func WithTracer(t trace.Tracer) Option {
	return func(d *Desk) { d.tracer = t }
}

// WithCodeGenerator replaces the random booking code generator.
func WithCodeGenerator(g reservation.Generator) Option {
	return func(d *Desk) { d.codes = g }
}

// WithCodeAttempts sets how many candidate codes are tried before giving up.
func WithCodeAttempts(n int) Option {
	return func(d *Desk) {
		if n > 0 {
			d.codeAttempts = n
		}
	}
}

// WithFlightCapacity sets the seats per flight used for occupancy.
func WithFlightCapacity(n int) Option {
	return func(d *Desk) {
		if n > 0 {
			d.capacity = n
		}
	}
}

// WithCapacityPolicy selects advisory or enforced capacity.
func WithCapacityPolicy(p reservation.CapacityPolicy) Option {
	return func(d *Desk) { d.capacityPolicy = p }
}

// WithDepartedGrace sets how long after departure a flight stays scheduled.
func WithDepartedGrace(grace time.Duration) Option {
	return func(d *Desk) {
		if grace > 0 {
			d.departedGrace = grace
		}
	}
}

// WithSweepInterval sets how often departed flights are swept. Zero
// disables the background sweeper.
func WithSweepInterval(interval time.Duration) Option {
	return func(d *Desk) { d.sweepInterval = interval }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(d *Desk) { d.now = now }
}

// WithAutoMigrate controls whether Start migrates the store.
func WithAutoMigrate(enabled bool) Option {
	return func(d *Desk) { d.autoMigrate = enabled }
}

// Store returns the underlying store.
func (d *Desk) Store() store.Store { return d.store }

// Plugins returns the plugin registry.
func (d *Desk) Plugins() *plugin.Registry { return d.plugins }

// Capacity returns the configured seats per flight.
func (d *Desk) Capacity() int { return d.capacity }

// Start migrates the store, loads the flight inventory and starts the
// departed-flight sweeper.
func (d *Desk) Start(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return nil
	}

	if d.autoMigrate {
		if err := d.store.Migrate(ctx); err != nil {
			d.started.Store(false)
			return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
		}
	}

	count, err := d.ReloadFlights(ctx)
	if err != nil {
		d.started.Store(false)
		return err
	}

	d.plugins.EmitInit(ctx, d)

	if d.sweepInterval > 0 {
		d.wg.Add(1)
		go d.sweepWorker(context.WithoutCancel(ctx))
	}

	d.logger.Info("skydesk started",
		"flights", count,
		"capacity", d.capacity,
		"capacity_policy", d.capacityPolicy,
		"sweep_interval", d.sweepInterval,
		"departed_grace", d.departedGrace,
	)

	return nil
}

// Stop halts background workers, notifies plugins and closes the store.
func (d *Desk) Stop() error {
	d.stopOnce.Do(func() { close(d.stopChan) })
	d.wg.Wait()

	d.plugins.EmitShutdown(context.Background())

	return d.store.Close()
}

// sweepWorker removes departed flights on every tick.
func (d *Desk) sweepWorker(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := d.SweepDeparted(ctx)
			if err != nil {
				d.logger.Error("departed flight sweep failed", "removed", removed, "error", err)
				continue
			}
			if removed > 0 {
				d.logger.Info("departed flights removed", "count", removed)
			}
		case <-d.stopChan:
			return
		}
	}
}

// fail records err on span and logs storage failures. It returns err.
func (d *Desk) fail(span trace.Span, op string, err error, attrs ...any) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	args := append([]any{"op", op, "error", err}, attrs...)
	if IsRetryable(err) {
		d.logger.Error("skydesk operation failed", args...)
	} else {
		d.logger.Debug("skydesk operation rejected", args...)
	}
	return err
}
