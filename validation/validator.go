package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/crudify/errors"
)

// Validator checks values that do not live in a tagged struct, such as route
// parameters and decoded request fields. Rules chain and every failure is
// kept.
//
//	err := validation.New().Required("name", name).MaxLength("name", name, 64).Validate()
type Validator struct {
	errs FieldErrors
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Check records message for field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Message: message})
	}
	return v
}

// Required rejects an empty or blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// MaxLength rejects a value longer than n bytes.
func (v *Validator) MaxLength(field, value string, n int) *Validator {
	return v.Check(len(value) <= n, field, fmt.Sprintf("must be %d characters or less", n))
}

// OneOf rejects a non-empty value outside allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	return v.Check(value == "" || slices.Contains(allowed, value), field, "must be one of: "+strings.Join(allowed, ", "))
}

// RequiredUUID rejects a blank, malformed or nil UUID.
func (v *Validator) RequiredUUID(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.Check(false, field, "is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return v.Check(false, field, "must be a valid UUID")
	}
	return v.Check(id != uuid.Nil, field, "must not be empty")
}

// Errors returns the failures recorded so far.
func (v *Validator) Errors() FieldErrors { return v.errs }

// Valid reports whether every rule passed.
func (v *Validator) Valid() bool { return len(v.errs) == 0 }

// Validate returns the recorded failures as an INVALID_INPUT error, or nil.
func (v *Validator) Validate() *errors.AppError {
	return v.errs.AppError()
}

// ValidateUUID parses a required UUID parameter.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if appErr := New().RequiredUUID(field, value).Validate(); appErr != nil {
		return uuid.Nil, appErr
	}
	return uuid.MustParse(value), nil
}
