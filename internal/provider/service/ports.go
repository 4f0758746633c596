package service

import (
	"context"

	"provider-registration/backend/internal/provider/domain"
)

// ProviderRepo is the minimal provider repository needed by the workflows.
type ProviderRepo interface {
	FindByEmail(ctx context.Context, email string) (*domain.Provider, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	ExistsByLicense(ctx context.Context, license string) (bool, error)
	Save(ctx context.Context, p *domain.Provider) (*domain.Provider, error)
}

// PasswordHasher hashes and verifies passwords. Verify must compare in constant time.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Verify(password []byte, hash string) bool
}

// TokenIssuer issues signed access tokens for authenticated providers.
type TokenIssuer interface {
	Issue(providerID, subject, specialization string) (string, error)
	ExpirationSeconds() int64
}
