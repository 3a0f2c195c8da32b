// Package cache provides the in-process cache that sits in front of the
// site's data backend.
//
// A Store keeps entries in a single map guarded by a mutex:
//   - every entry carries its own TTL; dead entries are dropped lazily on
//     read and by a periodic sweep
//   - when the map is full, Set evicts the least recently accessed entry
//     (a linear scan, fine for a few hundred keys)
//   - whole namespaces are dropped with InvalidatePattern
//   - Memoize and MemoizeWithRefresh wrap loaders with compute-if-absent and
//     stale-while-revalidate semantics, Warmup preloads keys concurrently
//
// Keys are colon-delimited namespaces such as "events:filtered:<hash>" or
// "clients:id:<id>"; see Key and NamespacePattern.
//
// The Store is created once by the composition root and passed to its
// consumers. Call Close on shutdown to stop the sweep.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Store is an in-memory cache with TTL expiry, size-bounded eviction and
// loader memoization. It is safe for concurrent use.
type Store struct {
	cfg     Config
	clock   clock.Clock
	logger  *slog.Logger
	metrics *cacheMetrics

	mu         sync.Mutex
	entries    map[string]*entry
	seq        uint64
	refreshing map[string]struct{}

	loads     singleflight.Group
	refreshWg sync.WaitGroup

	// Background sweep ownership.
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a Store and starts its background sweep when
// cfg.CleanupInterval is positive.
func New(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid cache config")
	}
	cfg = cfg.withDefaults()

	o := applyOptions(opts...)

	var metrics *cacheMetrics
	if o.registerer != nil {
		var err error
		metrics, err = newCacheMetrics(o.registerer, o.component)
		if err != nil {
			return nil, errors.Wrap(err, "failed to register cache metrics")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		cfg:        cfg,
		clock:      o.clock,
		logger:     o.logger,
		metrics:    metrics,
		entries:    make(map[string]*entry),
		refreshing: make(map[string]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	if cfg.CleanupInterval > 0 {
		// The ticker is created here rather than in the goroutine so that a
		// mock clock advanced right after New still fires it.
		ticker := s.clock.Ticker(cfg.CleanupInterval)
		s.wg.Add(1)
		go s.cleanupLoop(ticker)
	}

	return s, nil
}

// Config returns the configuration the Store was built with, defaults applied.
func (s *Store) Config() Config {
	return s.cfg
}

// Close stops the background sweep and removes all entries.
// Close is safe to call multiple times. Background refreshes already running
// are not awaited.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.Clear()
	})
	return nil
}

// Set stores value under key with the default TTL.
func (s *Store) Set(key string, value any) error {
	return s.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key, replacing any existing entry.
// ttl <= 0 selects the configured default. When the key is new and the map
// is full, the least recently accessed entry is evicted first.
// An error is returned only when compression is enabled and value cannot be
// serialized.
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	stored, size, compressed := value, 0, false
	if s.cfg.EnableCompression {
		enc, err := encode(value)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize cache value for key %q", key)
		}
		stored, size, compressed = enc, len(enc.data), true
	} else {
		size = approxSize(value)
	}

	now := s.clock.Now()

	s.mu.Lock()
	evicted := false
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.cfg.MaxSize {
		evicted = s.evictLocked()
	}
	s.seq++
	s.entries[key] = &entry{
		key:          key,
		value:        stored,
		createdAt:    now,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
		size:         size,
		compressed:   compressed,
		seq:          s.seq,
	}
	n := len(s.entries)
	s.mu.Unlock()

	if evicted {
		s.metrics.recordEviction()
	}
	s.metrics.recordSet()
	s.metrics.updateSize(n)
	return nil
}

// Get returns the value stored under key if it is live.
// A missing or expired key yields (nil, false, nil); an expired entry is
// removed as a side effect. A hit bumps the entry's access count and
// recency. The error is non-nil only when a compressed value fails to decode.
func (s *Store) Get(key string) (any, bool, error) {
	v, _, ok := s.lookup(key, true)
	if !ok {
		return nil, false, nil
	}
	return s.materialize(key, v)
}

// Has reports whether a live entry exists for key. Like Get it removes an
// expired entry, but it leaves access bookkeeping untouched.
func (s *Store) Has(key string) bool {
	_, _, ok := s.lookup(key, false)
	return ok
}

// Delete removes the entry for key regardless of liveness and reports
// whether one existed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	_, exists := s.entries[key]
	delete(s.entries, key)
	n := len(s.entries)
	s.mu.Unlock()

	if exists {
		s.metrics.updateSize(n)
	}
	return exists
}

// Clear removes all entries. The background sweep keeps running.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.mu.Unlock()

	s.metrics.updateSize(0)
}

// Len returns the number of entries in the map, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// lookup finds a live entry and returns its stored value and elapsed TTL
// fraction. Dead entries are deleted. touch updates access bookkeeping.
func (s *Store) lookup(key string, touch bool) (any, float64, bool) {
	now := s.clock.Now()

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		s.metrics.recordMiss()
		return nil, 0, false
	}
	if !e.live(now) {
		delete(s.entries, key)
		n := len(s.entries)
		s.mu.Unlock()
		s.metrics.recordExpiration(1)
		s.metrics.updateSize(n)
		s.metrics.recordMiss()
		return nil, 0, false
	}
	if touch {
		e.accessCount++
		e.lastAccessed = now
	}
	v, fraction := e.value, e.elapsedFraction(now)
	s.mu.Unlock()

	s.metrics.recordHit()
	return v, fraction, true
}

// materialize turns a stored value back into what the caller handed in.
func (s *Store) materialize(key string, stored any) (any, bool, error) {
	enc, ok := stored.(encoded)
	if !ok {
		return stored, true, nil
	}
	v, err := enc.decode()
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to deserialize cache value for key %q", key)
	}
	return v, true, nil
}
