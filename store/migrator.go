package store

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
)

// Migrate brings the database schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to migrate")
	}
	slog.Info("database schema is up to date")
	return nil
}
