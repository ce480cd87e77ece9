package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKind is returned for entity kinds outside the gateway whitelist.
	ErrInvalidKind = errors.New("invalid entity kind")
	// ErrValidation marks every field validation failure.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
