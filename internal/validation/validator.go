// Package validation provides struct validation using go-playground/validator v10
// behind a thread-safe singleton, with errors flattened into a small
// field/tag list that handlers can turn into client messages.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule.
type FieldError struct {
	Field string
	Tag   string
}

// Errors is the list of failed rules for one struct.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field, fe.Tag))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Fields returns the names of the fields that failed.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Field)
	}
	return out
}

// Get returns the shared validator instance.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates s and returns Errors, or nil when s is valid.
func ValidateStruct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return out
}
