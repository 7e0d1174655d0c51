package model

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every FieldError of a rejected request
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError wraps errs
func NewValidationError(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
