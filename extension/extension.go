// Package extension provides the Forge extension adapter for skydesk.
//
// It implements the forge.Extension interface to integrate the desk engine
// into a Forge application with DI registration and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.skydesk" or "skydesk" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/internal/storage"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "skydesk"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Airline points ledger, bookings and support desk"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the skydesk engine as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config   Config
	desk     *skydesk.Desk
	store    store.Store
	deskOpts []skydesk.Option
}

// New creates a new skydesk Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Desk returns the underlying engine.
// This is nil until Register is called.
func (e *Extension) Desk() *skydesk.Desk { return e.desk }

// Config returns the resolved configuration.
func (e *Extension) Config() Config { return e.config }

// Register implements [forge.Extension]. It loads configuration,
// initializes the desk engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if err := e.init(context.Background()); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*skydesk.Desk, error) {
		return e.desk, nil
	})
}

// init opens the configured store when none was provided and builds the
// engine from the resolved config.
func (e *Extension) init(ctx context.Context) error {
	if e.store == nil {
		s, err := storage.Open(ctx, e.config.Store)
		if err != nil {
			return fmt.Errorf("skydesk: open store: %w", err)
		}
		e.store = s
	}

	e.desk = skydesk.New(e.store, e.buildDeskOpts()...)
	return nil
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.desk == nil {
		return errors.New("skydesk: extension not initialized")
	}

	if err := e.desk.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension]. Stopping the desk closes the store.
func (e *Extension) Stop(_ context.Context) error {
	if e.desk != nil {
		if err := e.desk.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("skydesk: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildDeskOpts constructs skydesk.Option values from the resolved config.
// Pass-through options come last and win.
func (e *Extension) buildDeskOpts() []skydesk.Option {
	opts := make([]skydesk.Option, 0, len(e.deskOpts)+6)

	opts = append(opts,
		skydesk.WithAutoMigrate(!e.config.DisableMigrate),
		skydesk.WithFlightCapacity(e.config.FlightCapacity),
		skydesk.WithCodeAttempts(e.config.CodeAttempts),
		skydesk.WithDepartedGrace(e.config.DepartedGrace),
		skydesk.WithSweepInterval(e.config.SweepInterval),
	)
	if e.config.EnforceCapacity {
		opts = append(opts, skydesk.WithCapacityPolicy(reservation.CapacityEnforced))
	}

	opts = append(opts, e.deskOpts...)
	return opts
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("skydesk: configuration is required but not found in config files; " +
				"ensure 'extensions.skydesk' or 'skydesk' key exists in your config")
		}
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("skydesk: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("store_driver", e.config.Store.Driver),
		forge.F("flight_capacity", e.config.FlightCapacity),
		forge.F("enforce_capacity", e.config.EnforceCapacity),
		forge.F("departed_grace", e.config.DepartedGrace),
		forge.F("sweep_interval", e.config.SweepInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	for _, key := range []string{"extensions.skydesk", "skydesk"} {
		if !cm.IsSet(key) {
			continue
		}
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("skydesk: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("skydesk: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.FlightCapacity == 0 {
		cfg.FlightCapacity = defaults.FlightCapacity
	}
	if cfg.CodeAttempts == 0 {
		cfg.CodeAttempts = defaults.CodeAttempts
	}
	if cfg.DepartedGrace == 0 {
		cfg.DepartedGrace = defaults.DepartedGrace
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = defaults.SweepInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EnforceCapacity {
		yamlConfig.EnforceCapacity = true
	}

	if yamlConfig.Store.Driver == "" && programmaticConfig.Store.Driver != "" {
		yamlConfig.Store = programmaticConfig.Store
	}

	if yamlConfig.FlightCapacity == 0 && programmaticConfig.FlightCapacity != 0 {
		yamlConfig.FlightCapacity = programmaticConfig.FlightCapacity
	}
	if yamlConfig.CodeAttempts == 0 && programmaticConfig.CodeAttempts != 0 {
		yamlConfig.CodeAttempts = programmaticConfig.CodeAttempts
	}
	if yamlConfig.DepartedGrace == 0 && programmaticConfig.DepartedGrace != 0 {
		yamlConfig.DepartedGrace = programmaticConfig.DepartedGrace
	}
	if yamlConfig.SweepInterval == 0 && programmaticConfig.SweepInterval != 0 {
		yamlConfig.SweepInterval = programmaticConfig.SweepInterval
	}

	return mergeWithDefaults(yamlConfig)
}
