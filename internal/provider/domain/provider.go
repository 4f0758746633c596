package domain

import (
	"strings"
	"time"
)

// Provider is a registered service provider. PasswordHash never leaves the
// service layer; use Summary for anything returned to callers.
type Provider struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	PhoneNumber        string
	PasswordHash       string
	Specialization     string
	LicenseNumber      string
	YearsOfExperience  *int // optional
	ClinicAddress      *ClinicAddress
	VerificationStatus VerificationStatus
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ClinicAddress is the optional practice address of a provider.
type ClinicAddress struct {
	Street string
	City   string
	State  string
	Zip    string
}

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "PENDING"
	VerificationStatusVerified VerificationStatus = "VERIFIED"
	VerificationStatusRejected VerificationStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusVerified, VerificationStatusRejected:
		return true
	}
	return false
}

// Field names a uniquely indexed provider attribute.
type Field string

const (
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldLicense Field = "license"
)

// Summary is the read-only projection of a provider returned to callers.
type Summary struct {
	ID                 string
	FirstName          string
	LastName           string
	Email              string
	Specialization     string
	VerificationStatus VerificationStatus
	IsActive           bool
	CreatedAt          time.Time
}

// Summary returns the caller-facing projection of p.
func (p *Provider) Summary() Summary {
	return Summary{
		ID:                 p.ID,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Email:              p.Email,
		Specialization:     p.Specialization,
		VerificationStatus: p.VerificationStatus,
		IsActive:           p.IsActive,
		CreatedAt:          p.CreatedAt,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLicense trims and upper-cases a license number.
func NormalizeLicense(license string) string {
	return strings.ToUpper(strings.TrimSpace(license))
}

// NormalizePhone trims a phone number.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// Normalize returns a copy of a with every field trimmed, or nil if a is nil.
func (a *ClinicAddress) Normalize() *ClinicAddress {
	if a == nil {
		return nil
	}
	return &ClinicAddress{
		Street: strings.TrimSpace(a.Street),
		City:   strings.TrimSpace(a.City),
		State:  strings.TrimSpace(a.State),
		Zip:    strings.TrimSpace(a.Zip),
	}
}
