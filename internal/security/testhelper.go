package security

import "time"

// testSecret is a 64-byte HS512 key for unit tests only. Do not use in production.
const testSecret = "test-secret-key-for-unit-tests-only-0123456789abcdefghijklmnopqrs"

// NewTestTokenCodec returns a TokenCodec signed with the embedded test secret,
// issuer "test-issuer" and a one hour lifetime. For unit tests only.
func NewTestTokenCodec(opts ...Option) (*TokenCodec, error) {
	return NewTokenCodec(TokenConfig{
		Secret:     testSecret,
		Issuer:     "test-issuer",
		Expiration: time.Hour,
	}, opts...)
}
