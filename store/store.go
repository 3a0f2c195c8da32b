package store

import (
	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/store/cache"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("not found")

// Cache namespaces owned by the store.
const (
	eventNamespace   = "events"
	clientNamespace  = "clients"
	settingNamespace = "settings"
)

// Store provides database access to all raw objects.
// Reads go through the shared cache; writes drop the affected namespace.
type Store struct {
	driver Driver
	cache  *cache.Store
}

// New creates a new instance of Store. The cache is owned by the caller,
// which closes it after the store.
func New(driver Driver, cache *cache.Store) *Store {
	return &Store{
		driver: driver,
		cache:  cache,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Cache returns the cache the store reads through.
func (s *Store) Cache() *cache.Store {
	return s.cache
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// invalidate drops every cached key under ns.
func (s *Store) invalidate(ns string) {
	s.cache.InvalidateNamespace(ns)
}
