package store

import (
	"context"
	"embed"
	"log/slog"
	"path"

	"github.com/pkg/errors"
)

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the full schema applied to fresh databases.
const LatestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema when the database is fresh.
// Existing databases are left untouched; incremental migrations are
// applied out of band.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		slog.Debug("database already initialized", "driver", s.profile.Driver)
		return nil
	}

	buf, err := migrationFS.ReadFile(path.Join("migration", s.profile.Driver, LatestSchemaFileName))
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema for driver %s", s.profile.Driver)
	}

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin migration transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migration")
	}

	slog.Info("database initialized", "driver", s.profile.Driver)
	return nil
}
