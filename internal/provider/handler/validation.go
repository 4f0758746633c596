package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	intlPhonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	zipPattern       = regexp.MustCompile(`^\d{5,6}$`)
)

// bcryptMaxBytes is the longest password bcrypt accepts.
const bcryptMaxBytes = 72

// fieldMessages maps "<json path>.<tag>" to the client-facing message.
var fieldMessages = map[string]string{
	"firstName.notblank":      "First name is required",
	"firstName.min":           "First name must be between 2 and 50 characters",
	"firstName.max":           "First name must be between 2 and 50 characters",
	"lastName.notblank":       "Last name is required",
	"lastName.min":            "Last name must be between 2 and 50 characters",
	"lastName.max":            "Last name must be between 2 and 50 characters",
	"email.notblank":          "Email is required",
	"email.email":             "Email must be a valid email address",
	"phoneNumber.notblank":    "Phone number is required",
	"phoneNumber.intlphone":   "Phone number must be a valid international format",
	"password.notblank":       "Password is required",
	"password.strongpassword": "Password must be at least 8 characters long and contain at least 1 uppercase letter, 1 lowercase letter, 1 number, and 1 special character",
	"password.bcryptlen":      "Password must not exceed 72 bytes",
	"specialization.notblank": "Specialization is required",
	"specialization.min":      "Specialization must be between 3 and 100 characters",
	"specialization.max":      "Specialization must be between 3 and 100 characters",
	"licenseNumber.notblank":  "License number is required",
	"licenseNumber.alphanum":  "License number must contain only alphanumeric characters",
	"yearsOfExperience.min":   "Years of experience cannot be negative",
	"yearsOfExperience.max":   "Years of experience cannot exceed 50",

	"clinicAddress.street.notblank": "Street address is required",
	"clinicAddress.street.max":      "Street address must not exceed 200 characters",
	"clinicAddress.city.notblank":   "City is required",
	"clinicAddress.city.max":        "City must not exceed 100 characters",
	"clinicAddress.state.notblank":  "State is required",
	"clinicAddress.state.max":       "State must not exceed 50 characters",
	"clinicAddress.zip.notblank":    "ZIP code is required",
	"clinicAddress.zip.zip":         "ZIP code must be 5 or 6 digits",
}

// newValidator returns a validator reporting fields by their json names and
// carrying the provider-specific rules.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	rules := map[string]validator.Func{
		"notblank":       validators.NotBlank,
		"intlphone":      matchString(intlPhonePattern),
		"zip":            matchString(zipPattern),
		"strongpassword": func(fl validator.FieldLevel) bool { return isStrongPassword(fl.Field().String()) },
		"bcryptlen":      func(fl validator.FieldLevel) bool { return len(fl.Field().String()) <= bcryptMaxBytes },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// isStrongPassword requires at least 8 characters including an upper-case
// letter, a lower-case letter, a digit and a symbol.
func isStrongPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r):
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

// fieldErrors validates req and returns messages keyed by json path, or nil when valid.
func fieldErrors(v *validator.Validate, req any) map[string]string {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": "Invalid request"}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		msg, ok := fieldMessages[path+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		out[path] = msg
	}
	return out
}
