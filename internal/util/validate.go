package util

import "fmt"

// ValidationError represents a field validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRequired checks that a string field is not empty.
func ValidateRequired(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	return nil
}

// ValidateRange checks that an integer is within bounds.
func ValidateRange(field string, value, minVal, maxVal int) *ValidationError {
	if value < minVal || value > maxVal {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, minVal, maxVal, value),
		}
	}
	return nil
}

// ValidateMaxLength checks that a string doesn't exceed max length.
func ValidateMaxLength(field, value string, maxLen int) *ValidationError {
	if len(value) > maxLen {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s too long (max %d chars)", field, maxLen),
		}
	}
	return nil
}

// ValidatePort checks that a port number is valid (1-65535).
func ValidatePort(field string, port int) *ValidationError {
	return ValidateRange(field, port, 1, 65535)
}

// FirstInvalid returns the first non-nil validation error, or nil.
func FirstInvalid(errs ...*ValidationError) *ValidationError {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// IsConfigured returns true if all provided values are non-empty.
func IsConfigured(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
