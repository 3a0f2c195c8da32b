package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Loader produces the value for a cache key on a miss.
type Loader func(ctx context.Context) (any, error)

// WarmupEntry is one key to preload with Warmup.
type WarmupEntry struct {
	Key    string
	Loader Loader
	// TTL <= 0 selects the default.
	TTL time.Duration
}

// Memoize returns the live value for key, or runs loader, caches its result
// with ttl (<= 0 for the default) and returns it.
//
// A loader error is returned unchanged and nothing is cached, so the next
// call runs the loader again. Without Config.CoalesceLoads, concurrent misses
// on the same key each run the loader and the last Set wins.
func (s *Store) Memoize(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	return s.loadMiss(ctx, key, ttl, loader)
}

// MemoizeWithRefresh serves key with stale-while-revalidate semantics.
//
// When a live entry has used more than threshold of its TTL, a background
// refresh is started and the current value is returned right away. A live
// entry below the threshold is returned as is. Without a live entry this
// behaves like Memoize. threshold <= 0 selects DefaultRefreshThreshold.
//
// The caller never waits on a background refresh. At most one refresh per
// key is in flight; its failures are logged and dropped, and the loader gets
// a context that is not canceled with ctx.
func (s *Store) MemoizeWithRefresh(ctx context.Context, key string, ttl time.Duration, threshold float64, loader Loader) (any, error) {
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}

	stored, elapsed, ok := s.lookup(key, true)
	if !ok {
		return s.loadMiss(ctx, key, ttl, loader)
	}

	v, _, err := s.materialize(key, stored)
	if err != nil {
		return nil, err
	}
	if elapsed > threshold {
		s.refresh(context.WithoutCancel(ctx), key, ttl, loader)
	}
	return v, nil
}

// Warmup runs every loader concurrently and caches each result. A failing
// loader is logged and skipped. Warmup returns once all loaders have settled.
func (s *Store) Warmup(ctx context.Context, entries []WarmupEntry) {
	var g errgroup.Group
	for _, e := range entries {
		g.Go(func() error {
			if _, err := s.load(ctx, e.Key, e.TTL, e.Loader); err != nil {
				s.logger.Warn("cache warmup failed", "key", e.Key, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// loadMiss runs loader after a miss, sharing the call between concurrent
// callers when CoalesceLoads is set.
func (s *Store) loadMiss(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	if !s.cfg.CoalesceLoads {
		return s.load(ctx, key, ttl, loader)
	}
	v, err, _ := s.loads.Do(key, func() (any, error) {
		return s.load(ctx, key, ttl, loader)
	})
	return v, err
}

func (s *Store) load(ctx context.Context, key string, ttl time.Duration, loader Loader) (any, error) {
	if loader == nil {
		return nil, errors.Errorf("no loader for cache key %q", key)
	}
	v, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.SetWithTTL(key, v, ttl); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) refresh(ctx context.Context, key string, ttl time.Duration, loader Loader) {
	s.mu.Lock()
	if _, inFlight := s.refreshing[key]; inFlight {
		s.mu.Unlock()
		return
	}
	s.refreshing[key] = struct{}{}
	s.refreshWg.Add(1)
	s.mu.Unlock()

	s.metrics.recordRefresh()
	go func() {
		defer s.refreshWg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.refreshing, key)
			s.mu.Unlock()
		}()

		if _, err := s.load(ctx, key, ttl, loader); err != nil {
			s.metrics.recordRefreshFailure()
			s.logger.Warn("background cache refresh failed", "key", key, "error", err)
		}
	}()
}
