package entity

import "errors"

// Failure kinds the HTTP layer maps to status codes. Wrap them with
// fmt.Errorf("...: %w", ErrX) to add context.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError is a rejected input. Field is the JSON name of the
// offending field, or empty when the whole body is at fault.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap makes every ValidationError match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
