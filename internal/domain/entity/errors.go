package entity

import (
	"errors"
	"fmt"
)

// ErrValidationFailed is wrapped by every ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError represents a validation error with detailed field information.
// errors.Is(err, ErrValidationFailed) reports true for any *ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap ties every ValidationError to ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
