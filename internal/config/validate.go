package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/mahasiswa/internal/querysql"
)

// FieldError is a validation failure for one configuration field.
type FieldError struct {
	// Field is the dotted YAML path, e.g. "database.driver".
	Field string
	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d invalid fields:", len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return querysql.ValidateIdentifier(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		r, size := utf8.DecodeRuneInString(s)
		return size == len(s) && r != utf8.RuneError && !strings.ContainsRune("\"\r\n", r)
	})
	return v
}

// Validate checks cfg and returns a ValidationError listing every bad field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := ValidationError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "identifier":
		return fmt.Sprintf("must be a plain SQL identifier, got %q", fe.Value())
	case "delimiter":
		return fmt.Sprintf("must be a single character other than a quote or line break, got %q", fe.Value())
	case "hexcolor":
		return fmt.Sprintf("must be a hex colour such as #E0E0E0, got %q", fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("must be %s %s, got %v", comparison(fe.Tag()), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func comparison(tag string) string {
	if tag == "gte" {
		return ">="
	}
	return "<="
}
