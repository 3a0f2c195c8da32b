package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/eventdesk/internal/profile"
	"github.com/hrygo/eventdesk/store"
	"github.com/hrygo/eventdesk/store/db/postgres"
	"github.com/hrygo/eventdesk/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite suits a single instance; PostgreSQL is used when the database is shared.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
