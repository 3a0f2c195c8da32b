package store

import (
	"context"
	"time"

	"github.com/hrygo/eventdesk/store/cache"
)

// Setting is a named site setting such as the page title.
type Setting struct {
	Name      string
	Value     string
	UpdatedTs int64
}

type FindSetting struct {
	Name *string
}

func settingKey(name string) string {
	return cache.Key(settingNamespace, "key", name)
}

func (s *Store) UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error) {
	if upsert.UpdatedTs == 0 {
		upsert.UpdatedTs = time.Now().Unix()
	}
	setting, err := s.driver.UpsertSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.invalidate(settingNamespace)
	return setting, nil
}

// ListSettings reads all settings from the database.
func (s *Store) ListSettings(ctx context.Context) ([]*Setting, error) {
	return s.driver.ListSettings(ctx, &FindSetting{})
}

// GetSetting returns the setting called name, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, name string) (*Setting, error) {
	return cache.MemoizeAs(ctx, s.cache, settingKey(name), 0, func(ctx context.Context) (*Setting, error) {
		list, err := s.driver.ListSettings(ctx, &FindSetting{Name: &name})
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, ErrNotFound
		}
		return list[0], nil
	})
}
