// Package migrate runs database migrations from embedded SQL files using golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"path/filepath"

	"provider-registration/backend/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned when Up/Down has nothing to do (already at target version).
var ErrNoChange = migrate.ErrNoChange

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Run applies migrations for driver in the given direction.
// For postgres, target is the DSN; for sqlite, it is the database file path.
// direction must be "up" or "down". Returns nil on success, including when already
// at the target version; other errors for DB or I/O failures.
func Run(driver, target, direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}
	var databaseURL string
	switch driver {
	case DriverPostgres:
		if target == "" {
			return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
		}
		databaseURL = target
	case DriverSQLite:
		if target == "" {
			return errors.New("SQLITE_PATH is not set")
		}
		databaseURL = "sqlite://" + filepath.ToSlash(filepath.Clean(target))
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	sourceDriver, err := iofs.New(db.MigrationFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
	}
	return nil
}
