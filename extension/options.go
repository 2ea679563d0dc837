package extension

import (
	"time"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/internal/storage"
	"github.com/xraph/skydesk/plugin"
	"github.com/xraph/skydesk/store"
)

// Option configures the skydesk Forge extension.
type Option func(*Extension)

// WithStore sets the store for the desk engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithDeskOption passes a skydesk.Option through to the underlying engine.
func WithDeskOption(opt skydesk.Option) Option {
	return func(e *Extension) {
		e.deskOpts = append(e.deskOpts, opt)
	}
}

// WithPlugin registers a skydesk plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.deskOpts = append(e.deskOpts, skydesk.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithStoreConfig selects the backend the extension opens itself.
func WithStoreConfig(cfg storage.Config) Option {
	return func(e *Extension) { e.config.Store = cfg }
}

// WithFlightCapacity sets the per-flight seat count.
func WithFlightCapacity(n int) Option {
	return func(e *Extension) { e.config.FlightCapacity = n }
}

// WithEnforceCapacity rejects bookings on full flights.
func WithEnforceCapacity() Option {
	return func(e *Extension) { e.config.EnforceCapacity = true }
}

// WithDepartedGrace sets how long departed flights remain scheduled.
func WithDepartedGrace(d time.Duration) Option {
	return func(e *Extension) { e.config.DepartedGrace = d }
}

// WithSweepInterval sets how often departed flights are removed.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.SweepInterval = d }
}
