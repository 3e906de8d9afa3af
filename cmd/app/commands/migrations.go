package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrationSource returns the migrations directory and the database URL in
// the form golang-migrate expects for driver.
func migrationSource(driver, dsn string) (string, string, error) {
	switch driver {
	case "postgres":
		return "file://migrations/postgresql", dsn, nil
	case "mysql":
		if !strings.HasPrefix(dsn, "mysql://") {
			dsn = "mysql://" + dsn
		}
		return "file://migrations/mysql", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// RunMigrations applies all pending migrations for driver. It succeeds when
// the schema is already current.
func RunMigrations(logger *slog.Logger, driver, dsn string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	sourceURL, databaseURL, err := migrationSource(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
