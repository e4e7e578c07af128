package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a field that violates an entity invariant.
// It is always returned before any statement reaches the database.
type ValidationError struct {
	// Entity names the entity, e.g. "company" or "job_application".
	Entity string

	// Field is the offending field, using the column name.
	Field string

	// Message is a human-readable description of the violation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Message)
	}
	return fmt.Sprintf("invalid %s.%s: %s", e.Entity, e.Field, e.Message)
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(entity, field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
