package postgres

import (
	"errors"
	"fmt"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationCommand is a schema migration direction understood by Migrate
type MigrationCommand string

const (
	MigrationUp     MigrationCommand = "up"
	MigrationDown   MigrationCommand = "down"
	MigrationStatus MigrationCommand = "status"
)

// Migrate applies the versioned SQL files under cfg.Postgres.MigrationsPath
func Migrate(cfg *config.Configuration, log *logger.Logger, cmd MigrationCommand) error {
	m, err := migrate.New("file://"+cfg.Postgres.MigrationsPath, cfg.Postgres.GetURL())
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Warnw("failed to close migration resources", "source_error", sourceErr, "db_error", dbErr)
		}
	}()

	switch cmd {
	case MigrationUp:
		err = m.Up()
	case MigrationDown:
		err = m.Steps(-1)
	case MigrationStatus:
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Infow("no migrations applied yet")
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to read migration version: %w", verr)
		}
		log.Infow("current migration version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown migration command %q", cmd)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Infow("database schema already up to date", "command", cmd)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migration %s: %w", cmd, err)
	}

	log.Infow("migration completed", "command", cmd)
	return nil
}
