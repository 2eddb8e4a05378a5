package validation

import (
	"strings"

	"github.com/kbukum/crudify/errors"
)

// FieldError is one failed rule of one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the outcome of validating a value.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// AppError reports fe as one INVALID_INPUT error whose details list every
// field. It returns nil when fe is empty.
func (fe FieldErrors) AppError() *errors.AppError {
	if len(fe) == 0 {
		return nil
	}
	return errors.Validation(fe.Error()).WithDetail("fields", []FieldError(fe))
}
