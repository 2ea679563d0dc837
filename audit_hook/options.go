package audithook

import (
	"log/slog"
	"time"
)

// Option configures an Extension.
type Option func(*Extension)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extension) { e.logger = logger }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Extension) { e.now = now }
}

// WithEnabledActions restricts auditing to the named actions. Without it
// every action is audited.
func WithEnabledActions(actions ...string) Option {
	return func(e *Extension) { e.only = actionSet(actions) }
}

// WithDisabledActions drops the named actions. It wins over
// WithEnabledActions when an action appears in both.
func WithDisabledActions(actions ...string) Option {
	return func(e *Extension) {
		if e.skip == nil {
			e.skip = make(map[string]bool, len(actions))
		}
		for _, a := range actions {
			e.skip[a] = true
		}
	}
}

func actionSet(actions []string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return set
}
