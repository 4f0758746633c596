package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is empty, malformed, tampered with, or expired.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned at construction when the signing secret is shorter than MinSecretBytes.
	ErrWeakSecret = errors.New("security: signing secret must be at least 64 bytes for HS512")
)

const (
	// MinSecretBytes is the HS512 key length (512 bits).
	MinSecretBytes = 64
	// RoleProvider is the only role issued to authenticated providers.
	RoleProvider = "PROVIDER"
)

// ProviderClaims holds JWT claims for a provider access token.
type ProviderClaims struct {
	jwt.RegisteredClaims
	ProviderID     string `json:"provider_id"`
	Role           string `json:"role"`
	Specialization string `json:"specialization"`
}

// TokenConfig is the immutable configuration of a TokenCodec.
type TokenConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// Option configures a TokenCodec.
type Option func(*TokenCodec)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// TokenCodec issues and validates HS512-signed provider access tokens.
// It holds no mutable state after construction and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec returns a TokenCodec for cfg. It fails with ErrWeakSecret when
// the secret is shorter than MinSecretBytes. A zero or negative Expiration is
// accepted and yields tokens that are already expired.
func NewTokenCodec(cfg TokenConfig, opts ...Option) (*TokenCodec, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, ErrWeakSecret
	}
	c := &TokenCodec{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.Expiration,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)
	return c, nil
}

// Issue signs a fresh token for the provider. subject is the normalized email.
// Timestamps are truncated to whole seconds so exp - iat equals the configured lifetime.
func (c *TokenCodec) Issue(providerID, subject, specialization string) (string, error) {
	now := c.now().UTC().Truncate(time.Second)
	claims := ProviderClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		ProviderID:     providerID,
		Role:           RoleProvider,
		Specialization: specialization,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
}

// Validate reports whether token carries a valid signature and has not expired.
// It never panics on adversarial input.
func (c *TokenCodec) Validate(token string) bool {
	_, err := c.parse(token)
	return err == nil
}

// ExtractClaims verifies token and returns its claims.
func (c *TokenCodec) ExtractClaims(token string) (*ProviderClaims, error) {
	return c.parse(token)
}

// ExtractSubject verifies token and returns the subject (provider email).
func (c *TokenCodec) ExtractSubject(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractProviderID verifies token and returns the provider_id claim.
func (c *TokenCodec) ExtractProviderID(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	return claims.ProviderID, nil
}

// ExtractSpecialization verifies token and returns the specialization claim.
func (c *TokenCodec) ExtractSpecialization(token string) (string, error) {
	claims, err := c.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Specialization, nil
}

// ExtractExpiration verifies token and returns its expiry.
func (c *TokenCodec) ExtractExpiration(token string) (time.Time, error) {
	claims, err := c.parse(token)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired compares the token's exp claim to the current time without
// verifying the signature. Use Validate for authentication decisions.
func (c *TokenCodec) IsExpired(token string) (bool, error) {
	claims := &ProviderClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return true, nil
	}
	return !c.now().Before(claims.ExpiresAt.Time), nil
}

// ExpirationSeconds returns the configured token lifetime in seconds.
func (c *TokenCodec) ExpirationSeconds() int64 {
	return int64(c.ttl / time.Second)
}

func (c *TokenCodec) parse(tokenString string) (*ProviderClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrInvalidToken
	}
	claims := &ProviderClaims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
