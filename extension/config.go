package extension

import (
	"time"

	"github.com/xraph/skydesk/internal/storage"
)

// Config holds the skydesk extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.skydesk" or "skydesk" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Store selects the backend when no store is provided programmatically.
	// An empty driver uses the in-memory store.
	Store storage.Config `json:"store" mapstructure:"store" yaml:"store"`

	// FlightCapacity is the seat count shown on the departure board and,
	// when EnforceCapacity is set, the booking limit (default: 15).
	FlightCapacity int `json:"flight_capacity" mapstructure:"flight_capacity" yaml:"flight_capacity"`

	// EnforceCapacity rejects bookings on full flights.
	EnforceCapacity bool `json:"enforce_capacity" mapstructure:"enforce_capacity" yaml:"enforce_capacity"`

	// CodeAttempts is how many booking codes are drawn before giving up
	// (default: 10).
	CodeAttempts int `json:"code_attempts" mapstructure:"code_attempts" yaml:"code_attempts"`

	// DepartedGrace is how long after departure a flight stays on the
	// schedule (default: 2h).
	DepartedGrace time.Duration `json:"departed_grace" mapstructure:"departed_grace" yaml:"departed_grace"`

	// SweepInterval is how often departed flights are removed (default: 10m).
	SweepInterval time.Duration `json:"sweep_interval" mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		FlightCapacity: 15,
		CodeAttempts:   10,
		DepartedGrace:  2 * time.Hour,
		SweepInterval:  10 * time.Minute,
	}
}
