package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/routekit/errors"
)

// FieldError is one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator chains hand-written checks for settings that struct tags cannot
// express, such as durations and cross-field rules.
//
//	err := validation.New().
//	    Positive("timeout", c.Timeout).
//	    URL("base_url", c.BaseURL).
//	    Err()
type Validator struct {
	fields []FieldError
}

// New creates an empty Validator.
func New() *Validator { return &Validator{} }

// Custom records message for field unless ok. Every other check is built
// on it.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: message})
	}
	return v
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.fields) > 0 }

// Errors returns the failed checks in order.
func (v *Validator) Errors() []FieldError { return v.fields }

// Err returns an INVALID_INPUT error listing every failed field, or nil.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return fieldsError(v.fields)
}

func fieldsError(fields []FieldError) *errors.AppError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

// Required rejects a blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// URL accepts an empty value or an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	return v.Custom(value == "" || isHTTPURL(value), field, "must be an absolute http(s) URL")
}

// Positive rejects zero and negative durations.
func (v *Validator) Positive(field string, d time.Duration) *Validator {
	return v.Custom(d > 0, field, fmt.Sprintf("must be positive (got %s)", d))
}

// NonNegative rejects negative counts.
func (v *Validator) NonNegative(field string, n int) *Validator {
	return v.Custom(n >= 0, field, fmt.Sprintf("must not be negative (got %d)", n))
}

// OneOf accepts an empty value or one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	return v.Custom(value == "" || slices.Contains(allowed, value), field, "must be one of: "+strings.Join(allowed, ", "))
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
