package validation

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/crudify/errors"
)

// httpMethods lists the verbs accepted by the httpmethod tag.
var httpMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// tags are the rules added on top of the validator built-ins.
var tags = map[string]validator.Func{
	"httpmethod": func(fl validator.FieldLevel) bool {
		return slices.Contains(httpMethods, fl.Field().String())
	},
	"routepath": func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return p == "" || strings.HasPrefix(p, "/")
	},
}

// messages maps a failed tag to the text reported for the field.
var messages = map[string]func(param string) string{
	"required":   func(string) string { return "is required" },
	"min":        func(p string) string { return "must be at least " + p },
	"max":        func(p string) string { return "must be at most " + p },
	"url":        func(string) string { return "must be a valid URL" },
	"uuid":       func(string) string { return "must be a valid UUID" },
	"oneof":      func(p string) string { return "must be one of: " + p },
	"httpmethod": func(string) string { return "must be one of: " + strings.Join(httpMethods, " ") },
	"routepath":  func(string) string { return "must start with /" },
}

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return snake(f.Name)
		}
		return name
	})
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
})

// Validate checks s against its `validate` struct tags. Fields are named by
// their json tag, or the snake_cased Go name. All failures are reported as
// one INVALID_INPUT error.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var failed validator.ValidationErrors
	if !stderrors.As(err, &failed) {
		return errors.Validation("validation failed").WithCause(err)
	}

	fe := make(FieldErrors, len(failed))
	for i, f := range failed {
		fe[i] = FieldError{Field: snake(f.Field()), Message: message(f)}
	}
	return fe.AppError()
}

func message(f validator.FieldError) string {
	if m, ok := messages[f.Tag()]; ok {
		return m(f.Param())
	}
	return "is invalid"
}

// snake converts a Go identifier such as TrustProxy to trust_proxy.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
