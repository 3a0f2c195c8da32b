package cache

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTTL is used when neither the config nor the call site sets a TTL.
	DefaultTTL = 5 * time.Minute
	// DefaultMaxSize is the capacity used when Config.MaxSize is zero.
	DefaultMaxSize = 100
	// DefaultCleanupInterval is the sweep period of DefaultConfig.
	DefaultCleanupInterval = time.Minute
	// DefaultRefreshThreshold is the elapsed TTL fraction after which
	// MemoizeWithRefresh starts a background refresh.
	DefaultRefreshThreshold = 0.8
)

// Config holds the construction-time settings of a Store.
// A Store copies its Config; changing the original afterwards has no effect.
type Config struct {
	// DefaultTTL applies when a call site passes ttl <= 0.
	DefaultTTL time.Duration
	// MaxSize bounds the number of entries (live or dead) in the map.
	MaxSize int
	// EnableCompression stores values in serialized form. Values read back
	// are fresh copies, so callers cannot mutate the cached state.
	EnableCompression bool
	// CleanupInterval is the period of the background sweep. Zero disables it.
	CleanupInterval time.Duration
	// CoalesceLoads makes concurrent Memoize misses for the same key share a
	// single loader call.
	CoalesceLoads bool
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      DefaultTTL,
		MaxSize:         DefaultMaxSize,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.DefaultTTL < 0 {
		return errors.Errorf("default ttl must not be negative, got %v", c.DefaultTTL)
	}
	if c.MaxSize < 0 {
		return errors.Errorf("max size must not be negative, got %d", c.MaxSize)
	}
	if c.CleanupInterval < 0 {
		return errors.Errorf("cleanup interval must not be negative, got %v", c.CleanupInterval)
	}
	return nil
}

// withDefaults fills zero TTL and capacity. CleanupInterval is left alone
// because zero is meaningful there.
func (c Config) withDefaults() Config {
	if c.DefaultTTL == 0 {
		c.DefaultTTL = DefaultTTL
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
	return c
}
