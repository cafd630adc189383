package domain

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when a user id does not resolve to a stored user.
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
