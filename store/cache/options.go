package cache

import (
	"log/slog"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures optional collaborators of a Store.
type Option func(*storeOptions)

type storeOptions struct {
	clock      clock.Clock
	logger     *slog.Logger
	registerer prometheus.Registerer
	component  string
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(o *storeOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger used for background refresh and warmup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics exports cache counters to registerer, labelled with component.
// A nil registerer or empty component leaves metrics disabled.
func WithMetrics(registerer prometheus.Registerer, component string) Option {
	return func(o *storeOptions) {
		if registerer != nil && component != "" {
			o.registerer = registerer
			o.component = component
		}
	}
}

func applyOptions(opts ...Option) *storeOptions {
	o := &storeOptions{
		clock:  clock.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
