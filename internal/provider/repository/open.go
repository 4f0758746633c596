package repository

import (
	"context"
	"database/sql"
	"fmt"

	"provider-registration/backend/internal/config"
	"provider-registration/backend/internal/db"
	"provider-registration/backend/internal/db/migrate"
)

// OpenStore applies pending migrations for the configured driver, opens the
// database and returns a repository over it. The caller closes the *sql.DB.
func OpenStore(ctx context.Context, cfg *config.Config) (*SQLRepository, *sql.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		if err := migrate.Run(migrate.DriverPostgres, cfg.DatabaseURL, "up"); err != nil {
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresRepository(conn), conn, nil
	case config.DriverSQLite:
		if err := migrate.Run(migrate.DriverSQLite, cfg.SQLitePath, "up"); err != nil {
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteRepository(conn), conn, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
