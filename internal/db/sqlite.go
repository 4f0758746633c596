package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// sqlitePragmas are applied to every connection opened by OpenSQLite.
const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// OpenSQLite opens the SQLite database file at path, creating it if needed.
// The schema is not applied here; run the migrate runner with driver "sqlite" first.
func OpenSQLite(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

// SQLiteDSN returns the modernc.org/sqlite DSN for path with the standard pragmas.
func SQLiteDSN(path string) string {
	return filepath.Clean(path) + sqlitePragmas
}
