package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store/cache"
)

// WarmUp preloads the published event listing and every setting into the
// cache so the first requests after startup are served from memory.
func (s *Store) WarmUp(ctx context.Context) error {
	settings, err := s.driver.ListSettings(ctx, &FindSetting{})
	if err != nil {
		return errors.Wrap(err, "failed to list settings")
	}

	published := true
	find := &FindEvent{Published: &published}
	entries := []cache.WarmupEntry{{
		Key: eventListKey(find),
		Loader: func(ctx context.Context) (any, error) {
			return s.driver.ListEvents(ctx, find)
		},
	}}
	for _, setting := range settings {
		entries = append(entries, cache.WarmupEntry{
			Key: settingKey(setting.Name),
			Loader: func(context.Context) (any, error) {
				return setting, nil
			},
		})
	}

	s.cache.Warmup(ctx, entries)
	slog.Info("cache warmed up", slog.Int("keys", len(entries)))
	return nil
}
