package criteria

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes configuration and compilation errors.
type ErrorCode string

const (
	// ErrCodeUnknownCriterion indicates a criterion name the query does not recognize.
	ErrCodeUnknownCriterion ErrorCode = "UNKNOWN_CRITERION"

	// ErrCodeInvalidValue indicates a value that cannot be normalized.
	ErrCodeInvalidValue ErrorCode = "INVALID_CRITERION_VALUE"
)

// Error is returned when a criterion cannot be set or compiled.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Criterion is the name the caller used.
	Criterion string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Criterion, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Criterion, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewUnknownCriterionError creates an Error for an unrecognized name.
func NewUnknownCriterionError(name string) *Error {
	return &Error{
		Code:      ErrCodeUnknownCriterion,
		Criterion: name,
		Message:   "criterion is not recognized by this query",
	}
}

// NewInvalidValueError creates an Error for a value that cannot be normalized.
func NewInvalidValueError(name, format string, args ...any) *Error {
	return &Error{
		Code:      ErrCodeInvalidValue,
		Criterion: name,
		Message:   fmt.Sprintf(format, args...),
	}
}

// IsUnknownCriterion returns true if err is an unknown-criterion error.
// Uses errors.As to handle wrapped errors.
func IsUnknownCriterion(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnknownCriterion
	}
	return false
}

// IsInvalidValue returns true if err is an invalid-value error.
// Uses errors.As to handle wrapped errors.
func IsInvalidValue(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidValue
	}
	return false
}
