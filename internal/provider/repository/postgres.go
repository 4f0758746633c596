package repository

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"provider-registration/backend/internal/provider/domain"
)

// NewPostgresRepository returns a provider repository backed by Postgres.
// db must be opened with the pgx driver.
func NewPostgresRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
		dialect: dialect{
			placeholder:    func(n int) string { return "$" + strconv.Itoa(n) },
			encodeTime:     func(t time.Time) any { return t },
			classifyUnique: pgClassifyUniqueViolation,
		},
		now: time.Now,
	}
}

// pgClassifyUniqueViolation maps a 23505 error to the colliding field using
// constraint names from the providers migration.
func pgClassifyUniqueViolation(err error) (domain.Field, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}
	return fieldFromConstraint(pgErr.ConstraintName), true
}

func fieldFromConstraint(name string) domain.Field {
	c := strings.ToLower(strings.TrimSpace(name))
	switch c {
	case "uq_providers_email":
		return domain.FieldEmail
	case "uq_providers_phone":
		return domain.FieldPhone
	case "uq_providers_license":
		return domain.FieldLicense
	}
	switch {
	case strings.Contains(c, "email"):
		return domain.FieldEmail
	case strings.Contains(c, "phone"):
		return domain.FieldPhone
	case strings.Contains(c, "license"):
		return domain.FieldLicense
	}
	return ""
}
