package service

import (
	"errors"

	"provider-registration/backend/internal/provider/domain"
)

// Sentinel errors for provider workflows; the HTTP handler maps them to status codes.
var (
	ErrDuplicateIdentity  = errors.New("duplicate identity")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
)

// DuplicateIdentityError reports the first unique field a registration collided on.
type DuplicateIdentityError struct {
	Field domain.Field
	Value string
}

func (e *DuplicateIdentityError) Error() string {
	return "duplicate identity: " + string(e.Field)
}

// Message is the caller-facing description naming the colliding value.
func (e *DuplicateIdentityError) Message() string {
	switch e.Field {
	case domain.FieldEmail:
		return "Email already registered: " + e.Value
	case domain.FieldPhone:
		return "Phone number already registered: " + e.Value
	case domain.FieldLicense:
		return "License number already registered: " + e.Value
	}
	return "Provider already registered"
}

func (e *DuplicateIdentityError) Unwrap() error { return ErrDuplicateIdentity }
