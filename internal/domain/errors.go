package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every concrete domain error wraps exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrThrottled  = errors.New("throttled")
)

var (
	ErrItemNotFound        = fmt.Errorf("item %w", ErrNotFound)
	ErrClaimNotFound       = fmt.Errorf("claim %w", ErrNotFound)
	ErrItemReturned        = fmt.Errorf("%w: item already returned to its owner", ErrConflict)
	ErrClaimDecided        = fmt.Errorf("%w: claim already decided", ErrConflict)
	ErrNotItemFinder       = fmt.Errorf("%w: actor is not the finder of this item", ErrForbidden)
	ErrSubmissionThrottled = fmt.Errorf("%w: claim already submitted recently for this item", ErrThrottled)
)

// ValidationError reports malformed or missing input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
