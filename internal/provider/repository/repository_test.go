package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"provider-registration/backend/internal/db"
	"provider-registration/backend/internal/db/migrate"
	"provider-registration/backend/internal/provider/domain"
)

func openTempStore(t *testing.T) *SQLRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.db")
	if err := migrate.Run(migrate.DriverSQLite, path, "up"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewSQLiteRepository(sqlDB)
}

func newProvider(n int) *domain.Provider {
	return &domain.Provider{
		FirstName:          "Jane",
		LastName:           "Doe",
		Email:              fmt.Sprintf("jane%d@example.com", n),
		PhoneNumber:        fmt.Sprintf("+1555000%04d", n),
		PasswordHash:       "$2a$04$hash",
		Specialization:     "Cardiology",
		LicenseNumber:      fmt.Sprintf("MD%05d", n),
		VerificationStatus: domain.VerificationStatusPending,
		IsActive:           true,
	}
}

func TestSQLRepository_SaveAndFind(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()

	years := 7
	in := newProvider(1)
	in.YearsOfExperience = &years
	in.ClinicAddress = &domain.ClinicAddress{Street: "1 Main St", City: "Springfield", State: "IL", Zip: "62704"}

	saved, err := repo.Save(ctx, in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("Save should assign an id")
	}
	if saved.CreatedAt.IsZero() || !saved.UpdatedAt.Equal(saved.CreatedAt) {
		t.Errorf("Save timestamps: created=%v updated=%v", saved.CreatedAt, saved.UpdatedAt)
	}
	if in.ID != "" {
		t.Error("Save must not modify the caller's provider")
	}

	for name, find := range map[string]func() (*domain.Provider, error){
		"id":      func() (*domain.Provider, error) { return repo.FindByID(ctx, saved.ID) },
		"email":   func() (*domain.Provider, error) { return repo.FindByEmail(ctx, "jane1@example.com") },
		"phone":   func() (*domain.Provider, error) { return repo.FindByPhone(ctx, "+15550000001") },
		"license": func() (*domain.Provider, error) { return repo.FindByLicense(ctx, "MD00001") },
	} {
		got, err := find()
		if err != nil {
			t.Fatalf("FindBy %s: %v", name, err)
		}
		if got == nil || got.ID != saved.ID {
			t.Fatalf("FindBy %s: got %+v", name, got)
		}
	}

	got, _ := repo.FindByID(ctx, saved.ID)
	if got.PasswordHash != "$2a$04$hash" || !got.IsActive || got.VerificationStatus != domain.VerificationStatusPending {
		t.Errorf("stored fields: %+v", got)
	}
	if got.YearsOfExperience == nil || *got.YearsOfExperience != 7 {
		t.Errorf("YearsOfExperience = %v", got.YearsOfExperience)
	}
	if got.ClinicAddress == nil || got.ClinicAddress.Zip != "62704" || got.ClinicAddress.City != "Springfield" {
		t.Errorf("ClinicAddress = %+v", got.ClinicAddress)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt round trip: got %v want %v", got.CreatedAt, saved.CreatedAt)
	}
}

func TestSQLRepository_OptionalFieldsAbsent(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()
	saved, err := repo.Save(ctx, newProvider(2))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.FindByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.YearsOfExperience != nil || got.ClinicAddress != nil {
		t.Errorf("optional fields should be nil, got years=%v address=%+v", got.YearsOfExperience, got.ClinicAddress)
	}
}

func TestSQLRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()
	p, err := repo.FindByEmail(ctx, "nobody@example.com")
	if err != nil || p != nil {
		t.Fatalf("FindByEmail missing: got %v, %v; want nil, nil", p, err)
	}
	p, err = repo.FindByID(ctx, "missing")
	if err != nil || p != nil {
		t.Fatalf("FindByID missing: got %v, %v; want nil, nil", p, err)
	}
}

func TestSQLRepository_Exists(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()
	if _, err := repo.Save(ctx, newProvider(3)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	checks := []struct {
		name  string
		check func(context.Context, string) (bool, error)
		value string
		want  bool
	}{
		{"email hit", repo.ExistsByEmail, "jane3@example.com", true},
		{"email miss", repo.ExistsByEmail, "jane4@example.com", false},
		{"phone hit", repo.ExistsByPhone, "+15550000003", true},
		{"phone miss", repo.ExistsByPhone, "+15550000004", false},
		{"license hit", repo.ExistsByLicense, "MD00003", true},
		{"license miss", repo.ExistsByLicense, "MD00004", false},
	}
	for _, c := range checks {
		got, err := c.check(ctx, c.value)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSQLRepository_UniqueViolations(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()
	if _, err := repo.Save(ctx, newProvider(10)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dupEmail := newProvider(11)
	dupEmail.Email = "jane10@example.com"
	dupPhone := newProvider(12)
	dupPhone.PhoneNumber = "+15550000010"
	dupLicense := newProvider(13)
	dupLicense.LicenseNumber = "MD00010"

	tests := []struct {
		name string
		p    *domain.Provider
		want domain.Field
	}{
		{"email", dupEmail, domain.FieldEmail},
		{"phone", dupPhone, domain.FieldPhone},
		{"license", dupLicense, domain.FieldLicense},
	}
	for _, tt := range tests {
		_, err := repo.Save(ctx, tt.p)
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("%s: want ErrConflict, got %v", tt.name, err)
		}
		var ce *ConflictError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: want *ConflictError, got %T", tt.name, err)
		}
		if ce.Field != tt.want {
			t.Errorf("%s: Field = %q, want %q", tt.name, ce.Field, tt.want)
		}
	}
}

func TestSQLRepository_ConcurrentDuplicateInsert(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := newProvider(20)
			_, err := repo.Save(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if winners != 1 || conflicts != workers-1 {
		t.Fatalf("winners=%d conflicts=%d, want 1 and %d", winners, conflicts, workers-1)
	}
}

func TestSQLRepository_SetActive(t *testing.T) {
	t.Parallel()
	repo := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return created }
	saved, err := repo.Save(ctx, newProvider(30))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	later := created.Add(time.Hour)
	repo.now = func() time.Time { return later }
	if err := repo.SetActive(ctx, saved.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, _ := repo.FindByID(ctx, saved.ID)
	if got.IsActive {
		t.Error("provider should be inactive")
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(created) {
		t.Errorf("timestamps after update: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}

	if err := repo.SetActive(ctx, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive missing: want ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_Rebind(t *testing.T) {
	repo := NewPostgresRepository(nil)
	got := repo.rebind(`UPDATE providers SET is_active = ?, updated_at = ? WHERE id = ?`)
	want := `UPDATE providers SET is_active = $1, updated_at = $2 WHERE id = $3`
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
	if s := NewSQLiteRepository(nil).rebind("a = ?"); s != "a = ?" {
		t.Errorf("sqlite rebind = %q", s)
	}
}

func TestPgClassifyUniqueViolation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		field  domain.Field
		unique bool
	}{
		{"email constraint", &pgconn.PgError{Code: "23505", ConstraintName: "uq_providers_email"}, domain.FieldEmail, true},
		{"phone constraint", &pgconn.PgError{Code: "23505", ConstraintName: "uq_providers_phone"}, domain.FieldPhone, true},
		{"license constraint", &pgconn.PgError{Code: "23505", ConstraintName: "UQ_PROVIDERS_LICENSE"}, domain.FieldLicense, true},
		{"heuristic", &pgconn.PgError{Code: "23505", ConstraintName: "providers_email_key"}, domain.FieldEmail, true},
		{"unknown constraint", &pgconn.PgError{Code: "23505", ConstraintName: "providers_pkey"}, "", true},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uq_providers_phone"}), domain.FieldPhone, true},
		{"other code", &pgconn.PgError{Code: "23503"}, "", false},
		{"plain error", errors.New("boom"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := pgClassifyUniqueViolation(tt.err)
			if ok != tt.unique || field != tt.field {
				t.Errorf("got (%q, %v), want (%q, %v)", field, ok, tt.field, tt.unique)
			}
		})
	}
}

func TestSQLiteClassifyUniqueViolation_Message(t *testing.T) {
	field, ok := sqliteClassifyUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: providers.license_number (2067)"))
	if !ok || field != domain.FieldLicense {
		t.Errorf("got (%q, %v)", field, ok)
	}
	if _, ok := sqliteClassifyUniqueViolation(errors.New("disk I/O error")); ok {
		t.Error("non-constraint error should not classify as unique")
	}
	if _, ok := sqliteClassifyUniqueViolation(nil); ok {
		t.Error("nil error should not classify as unique")
	}
}

func TestConflictError(t *testing.T) {
	err := error(&ConflictError{Field: domain.FieldPhone})
	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError should unwrap to ErrConflict")
	}
	if err.Error() != "providers: phone already exists" {
		t.Errorf("Error() = %q", err.Error())
	}
}
