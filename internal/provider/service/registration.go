package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"provider-registration/backend/internal/provider/domain"
	"provider-registration/backend/internal/provider/repository"
)

const instrumentationName = "provider-registration/backend/internal/provider/service"

var tracer = otel.Tracer(instrumentationName)

// RegisterInput carries the raw registration fields. Strings are normalized by Register.
type RegisterInput struct {
	FirstName         string
	LastName          string
	Email             string
	PhoneNumber       string
	Password          string
	Specialization    string
	LicenseNumber     string
	YearsOfExperience *int
	ClinicAddress     *domain.ClinicAddress
}

// RegistrationService creates provider identities under email, phone and license uniqueness.
type RegistrationService struct {
	repo    ProviderRepo
	hasher  PasswordHasher
	log     zerolog.Logger
	now     func() time.Time
	counter metric.Int64Counter
}

// NewRegistrationService returns a RegistrationService with the given dependencies.
func NewRegistrationService(repo ProviderRepo, hasher PasswordHasher, log zerolog.Logger) *RegistrationService {
	counter, err := otel.Meter(instrumentationName).Int64Counter("provider.registrations",
		metric.WithDescription("Provider registration attempts by outcome"))
	if err != nil {
		log.Warn().Err(err).Msg("registration counter unavailable")
	}
	return &RegistrationService{
		repo:    repo,
		hasher:  hasher,
		log:     log.With().Str("component", "registration").Logger(),
		now:     time.Now,
		counter: counter,
	}
}

// Register normalizes in, rejects the first duplicate of email, phone or license
// (checked in that order), hashes the password and persists a PENDING, active provider.
// The returned provider still carries PasswordHash; callers expose Summary only.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*domain.Provider, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Register")
	defer span.End()

	p, err := s.register(ctx, in)
	outcome := outcomeOf(err)
	s.record(ctx, outcome)
	if err != nil {
		span.SetAttributes(attribute.String("outcome", outcome))
		if outcome == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("provider.id", p.ID), attribute.String("outcome", outcome))
	return p, nil
}

func (s *RegistrationService) register(ctx context.Context, in RegisterInput) (*domain.Provider, error) {
	email := domain.NormalizeEmail(in.Email)
	phone := domain.NormalizePhone(in.PhoneNumber)
	license := domain.NormalizeLicense(in.LicenseNumber)

	checks := []struct {
		field  domain.Field
		value  string
		exists func(context.Context, string) (bool, error)
	}{
		{domain.FieldEmail, email, s.repo.ExistsByEmail},
		{domain.FieldPhone, phone, s.repo.ExistsByPhone},
		{domain.FieldLicense, license, s.repo.ExistsByLicense},
	}
	for _, c := range checks {
		exists, err := c.exists(ctx, c.value)
		if err != nil {
			return nil, err
		}
		if exists {
			s.log.Info().Str("field", string(c.field)).Msg("registration rejected: duplicate")
			return nil, &DuplicateIdentityError{Field: c.field, Value: c.value}
		}
	}

	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	saved, err := s.repo.Save(ctx, &domain.Provider{
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Email:              email,
		PhoneNumber:        phone,
		PasswordHash:       hashed,
		Specialization:     strings.TrimSpace(in.Specialization),
		LicenseNumber:      license,
		YearsOfExperience:  in.YearsOfExperience,
		ClinicAddress:      in.ClinicAddress.Normalize(),
		VerificationStatus: domain.VerificationStatusPending,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		// Lost a race with a concurrent registration after the pre-checks passed.
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			dup := &DuplicateIdentityError{Field: conflict.Field}
			switch conflict.Field {
			case domain.FieldEmail:
				dup.Value = email
			case domain.FieldPhone:
				dup.Value = phone
			case domain.FieldLicense:
				dup.Value = license
			}
			return nil, dup
		}
		return nil, err
	}
	s.log.Info().Str("provider_id", saved.ID).Msg("provider registered")
	return saved, nil
}

func (s *RegistrationService) record(ctx context.Context, outcome string) {
	if s.counter != nil {
		s.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountInactive):
		return "inactive"
	}
	return "error"
}
