package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"provider-registration/backend/internal/provider/domain"
)

// NewSQLiteRepository returns a provider repository backed by SQLite.
// Timestamps are stored as Unix milliseconds.
func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
		dialect: dialect{
			placeholder:    func(int) string { return "?" },
			encodeTime:     func(t time.Time) any { return t.UTC().UnixMilli() },
			classifyUnique: sqliteClassifyUniqueViolation,
		},
		now: time.Now,
	}
}

// sqliteClassifyUniqueViolation detects SQLITE_CONSTRAINT_UNIQUE and reads the
// column from the "UNIQUE constraint failed: providers.<column>" message.
func sqliteClassifyUniqueViolation(err error) (domain.Field, bool) {
	if err == nil {
		return "", false
	}
	message := strings.ToLower(err.Error())
	var sqliteErr *msqlite.Error
	isUnique := errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
	if !isUnique && !strings.Contains(message, "unique constraint failed") {
		return "", false
	}
	switch {
	case strings.Contains(message, "providers.email"):
		return domain.FieldEmail, true
	case strings.Contains(message, "providers.phone_number"):
		return domain.FieldPhone, true
	case strings.Contains(message, "providers.license_number"):
		return domain.FieldLicense, true
	}
	return "", true
}
