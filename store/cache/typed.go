package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// GetAs is Get with the result asserted to T.
func GetAs[T any](s *Store, key string) (T, bool, error) {
	var zero T
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return zero, false, err
	}
	t, err := as[T](key, v)
	if err != nil {
		return zero, false, err
	}
	return t, true, nil
}

// MemoizeAs is Memoize for a typed loader.
func MemoizeAs[T any](ctx context.Context, s *Store, key string, ttl time.Duration, loader func(context.Context) (T, error)) (T, error) {
	v, err := s.Memoize(ctx, key, ttl, erase(loader))
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](key, v)
}

// MemoizeWithRefreshAs is MemoizeWithRefresh for a typed loader.
func MemoizeWithRefreshAs[T any](ctx context.Context, s *Store, key string, ttl time.Duration, threshold float64, loader func(context.Context) (T, error)) (T, error) {
	v, err := s.MemoizeWithRefresh(ctx, key, ttl, threshold, erase(loader))
	if err != nil {
		var zero T
		return zero, err
	}
	return as[T](key, v)
}

func erase[T any](loader func(context.Context) (T, error)) Loader {
	if loader == nil {
		return nil
	}
	return func(ctx context.Context) (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func as[T any](key string, v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("cache entry %q holds %T, want %T", key, v, zero)
	}
	return t, nil
}
