package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"provider-registration/backend/internal/provider/domain"
)

// ErrNotFound is returned by SetActive when no provider has the given id.
var ErrNotFound = errors.New("provider not found")

const providerColumns = `id, first_name, last_name, email, phone_number, password_hash,
	specialization, license_number, years_of_experience,
	clinic_street, clinic_city, clinic_state, clinic_zip,
	verification_status, is_active, created_at, updated_at`

// dialect captures the differences between the SQL engines the store runs on.
type dialect struct {
	placeholder    func(n int) string
	encodeTime     func(t time.Time) any
	classifyUnique func(err error) (domain.Field, bool)
}

// SQLRepository implements Repository over database/sql.
type SQLRepository struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

var _ Repository = (*SQLRepository)(nil)

func (r *SQLRepository) rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString(r.dialect.placeholder(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// FindByID returns the provider with id, or nil if not found.
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*domain.Provider, error) {
	return r.findBy(ctx, "id", id)
}

// FindByEmail returns the provider with the given normalized email, or nil if not found.
func (r *SQLRepository) FindByEmail(ctx context.Context, email string) (*domain.Provider, error) {
	return r.findBy(ctx, "email", email)
}

// FindByPhone returns the provider with the given phone number, or nil if not found.
func (r *SQLRepository) FindByPhone(ctx context.Context, phone string) (*domain.Provider, error) {
	return r.findBy(ctx, "phone_number", phone)
}

// FindByLicense returns the provider with the given normalized license number, or nil if not found.
func (r *SQLRepository) FindByLicense(ctx context.Context, license string) (*domain.Provider, error) {
	return r.findBy(ctx, "license_number", license)
}

func (r *SQLRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.existsBy(ctx, "email", email)
}

func (r *SQLRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.existsBy(ctx, "phone_number", phone)
}

func (r *SQLRepository) ExistsByLicense(ctx context.Context, license string) (bool, error) {
	return r.existsBy(ctx, "license_number", license)
}

// Save inserts p. The caller's value is not modified.
func (r *SQLRepository) Save(ctx context.Context, p *domain.Provider) (*domain.Provider, error) {
	saved := *p
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = r.now()
	}
	saved.CreatedAt = saved.CreatedAt.UTC().Truncate(time.Millisecond)
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = saved.CreatedAt
	}
	saved.UpdatedAt = saved.UpdatedAt.UTC().Truncate(time.Millisecond)
	if saved.VerificationStatus == "" {
		saved.VerificationStatus = domain.VerificationStatusPending
	}

	var years sql.NullInt64
	if saved.YearsOfExperience != nil {
		years = sql.NullInt64{Int64: int64(*saved.YearsOfExperience), Valid: true}
	}
	var street, city, state, zip sql.NullString
	if a := saved.ClinicAddress; a != nil {
		street = sql.NullString{String: a.Street, Valid: true}
		city = sql.NullString{String: a.City, Valid: true}
		state = sql.NullString{String: a.State, Valid: true}
		zip = sql.NullString{String: a.Zip, Valid: true}
	}

	query := r.rebind(`INSERT INTO providers (` + providerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		saved.ID, saved.FirstName, saved.LastName, saved.Email, saved.PhoneNumber, saved.PasswordHash,
		saved.Specialization, saved.LicenseNumber, years,
		street, city, state, zip,
		string(saved.VerificationStatus), saved.IsActive,
		r.dialect.encodeTime(saved.CreatedAt), r.dialect.encodeTime(saved.UpdatedAt),
	)
	if err != nil {
		if field, ok := r.dialect.classifyUnique(err); ok {
			return nil, &ConflictError{Field: field, Err: err}
		}
		return nil, fmt.Errorf("insert provider: %w", err)
	}
	return &saved, nil
}

// SetActive updates is_active and updated_at for id. Returns ErrNotFound when no row matches.
func (r *SQLRepository) SetActive(ctx context.Context, id string, active bool) error {
	now := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.db.ExecContext(ctx,
		r.rebind(`UPDATE providers SET is_active = ?, updated_at = ? WHERE id = ?`),
		active, r.dialect.encodeTime(now), id)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) findBy(ctx context.Context, column, value string) (*domain.Provider, error) {
	row := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT `+providerColumns+` FROM providers WHERE `+column+` = ?`), value)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *SQLRepository) existsBy(ctx context.Context, column, value string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT EXISTS(SELECT 1 FROM providers WHERE `+column+` = ?)`), value).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func scanProvider(row *sql.Row) (*domain.Provider, error) {
	var (
		p                        domain.Provider
		status                   string
		years                    sql.NullInt64
		street, city, state, zip sql.NullString
		createdAt, updatedAt     dbTime
	)
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber, &p.PasswordHash,
		&p.Specialization, &p.LicenseNumber, &years,
		&street, &city, &state, &zip,
		&status, &p.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.VerificationStatus = domain.VerificationStatus(status)
	if years.Valid {
		y := int(years.Int64)
		p.YearsOfExperience = &y
	}
	if street.Valid || city.Valid || state.Valid || zip.Valid {
		p.ClinicAddress = &domain.ClinicAddress{
			Street: street.String,
			City:   city.String,
			State:  state.String,
			Zip:    zip.String,
		}
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

// dbTime scans timestamps stored as native time values (Postgres) or Unix
// milliseconds (SQLite).
type dbTime struct {
	time.Time
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
	case int64:
		t.Time = time.UnixMilli(v).UTC()
	case nil:
		t.Time = time.Time{}
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
	return nil
}
