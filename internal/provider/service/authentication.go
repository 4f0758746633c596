package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"provider-registration/backend/internal/provider/domain"
)

// TokenTypeBearer is the token_type reported with every issued token.
const TokenTypeBearer = "Bearer"

// AuthResult holds the outcome of a successful Authenticate.
type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	Provider    domain.Summary
}

// AuthService verifies provider credentials and issues access tokens.
type AuthService struct {
	repo    ProviderRepo
	hasher  PasswordHasher
	tokens  TokenIssuer
	log     zerolog.Logger
	counter metric.Int64Counter
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(repo ProviderRepo, hasher PasswordHasher, tokens TokenIssuer, log zerolog.Logger) *AuthService {
	counter, err := otel.Meter(instrumentationName).Int64Counter("provider.logins",
		metric.WithDescription("Provider login attempts by outcome"))
	if err != nil {
		log.Warn().Err(err).Msg("login counter unavailable")
	}
	return &AuthService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		log:     log.With().Str("component", "authentication").Logger(),
		counter: counter,
	}
}

// Authenticate returns a signed token for the provider with email and password.
// Unknown email and wrong password both yield ErrInvalidCredentials; an inactive
// account yields ErrAccountInactive before the password is checked.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	res, err := s.authenticate(ctx, email, password)
	outcome := outcomeOf(err)
	span.SetAttributes(attribute.String("outcome", outcome))
	if s.counter != nil {
		s.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if outcome == "error" {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	p, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		s.log.Info().Msg("login rejected: unknown email")
		return nil, ErrInvalidCredentials
	}
	if !p.IsActive {
		s.log.Info().Str("provider_id", p.ID).Msg("login rejected: account inactive")
		return nil, ErrAccountInactive
	}
	if !s.hasher.Verify([]byte(password), p.PasswordHash) {
		s.log.Info().Str("provider_id", p.ID).Msg("login rejected: bad password")
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(p.ID, p.Email, p.Specialization)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("provider_id", p.ID).Msg("login succeeded")
	return &AuthResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.tokens.ExpirationSeconds(),
		Provider:    p.Summary(),
	}, nil
}
