package test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/eventdesk/internal/profile"
	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/cache"
	"github.com/hrygo/eventdesk/store/db"
)

// TestingStore bundles a migrated store with the pieces tests inspect.
type TestingStore struct {
	*store.Store
	Cache  *cache.Store
	Driver *CountingDriver
}

// NewTestingStore opens a fresh SQLite database in a temp dir and wires it to
// a cache built from cfg. Everything is closed when the test ends.
func NewTestingStore(ctx context.Context, t *testing.T, cfg cache.Config, opts ...cache.Option) *TestingStore {
	t.Helper()

	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   dir,
		DSN:    filepath.Join(dir, "eventdesk_test.db"),
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	c, err := cache.New(cfg, opts...)
	require.NoError(t, err)

	counting := &CountingDriver{Driver: driver}
	s := store.New(counting, c)
	t.Cleanup(func() {
		_ = s.Close()
		_ = c.Close()
	})
	require.NoError(t, s.Migrate(ctx))

	return &TestingStore{Store: s, Cache: c, Driver: counting}
}

// CountingDriver records how often read queries reach the database.
type CountingDriver struct {
	store.Driver

	eventLists   atomic.Int64
	clientLists  atomic.Int64
	settingLists atomic.Int64
}

func (d *CountingDriver) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	d.eventLists.Add(1)
	return d.Driver.ListEvents(ctx, find)
}

func (d *CountingDriver) ListClients(ctx context.Context, find *store.FindClient) ([]*store.Client, error) {
	d.clientLists.Add(1)
	return d.Driver.ListClients(ctx, find)
}

func (d *CountingDriver) ListSettings(ctx context.Context, find *store.FindSetting) ([]*store.Setting, error) {
	d.settingLists.Add(1)
	return d.Driver.ListSettings(ctx, find)
}

func (d *CountingDriver) EventLists() int64   { return d.eventLists.Load() }
func (d *CountingDriver) ClientLists() int64  { return d.clientLists.Load() }
func (d *CountingDriver) SettingLists() int64 { return d.settingLists.Load() }

// testCacheConfig disables the sweep so tests control expiry.
func testCacheConfig() cache.Config {
	return cache.Config{CleanupInterval: 0}
}
