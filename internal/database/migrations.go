package database

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// RunMigrations applies every pending goose migration from migrationsDir.
// Called once at startup, before the server takes traffic.
func RunMigrations(db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	current, err := goose.GetDBVersion(db)
	if err == nil {
		logger.Info("Applying pending migrations",
			zap.String("dir", migrationsDir),
			zap.Int64("current_version", current),
		)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
