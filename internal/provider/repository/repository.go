package repository

import (
	"context"
	"errors"

	"provider-registration/backend/internal/provider/domain"
)

// ErrConflict is the sentinel for unique-constraint violations reported by the store.
var ErrConflict = errors.New("conflict")

// ConflictError reports which unique field a write collided on. Field is empty
// when the store could not attribute the violation to a known constraint.
type ConflictError struct {
	Field domain.Field
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "providers: unique constraint violated"
	}
	return "providers: " + string(e.Field) + " already exists"
}

func (e *ConflictError) Unwrap() []error { return []error{ErrConflict, e.Err} }

// Repository defines persistence for providers. Find methods return nil, nil
// when no provider matches.
type Repository interface {
	FindByID(ctx context.Context, id string) (*domain.Provider, error)
	FindByEmail(ctx context.Context, email string) (*domain.Provider, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Provider, error)
	FindByLicense(ctx context.Context, license string) (*domain.Provider, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByLicense(ctx context.Context, license string) (bool, error)
	// Save inserts p and returns the stored copy with ID, CreatedAt and
	// UpdatedAt assigned when absent. A unique violation yields *ConflictError.
	Save(ctx context.Context, p *domain.Provider) (*domain.Provider, error)
	// SetActive toggles the authentication gate and refreshes UpdatedAt.
	SetActive(ctx context.Context, id string, active bool) error
}
