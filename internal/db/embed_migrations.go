package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations, one
// directory per driver (postgres, sqlite). Used by the migrate runner.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var MigrationFS embed.FS
