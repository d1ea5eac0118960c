package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared between the store, the services and the HTTP layer.
// Handlers map these to status codes; services never talk HTTP.
var (
	// ErrConflict signals a uniqueness violation (username, email, token value).
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is deliberately opaque: the same value is returned
	// for an unknown identifier, a wrong password and a bad or expired token,
	// so a caller cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound covers both "no such record" and "record owned by someone
	// else" so ownership cannot be probed either.
	ErrNotFound = errors.New("not found")

	ErrInvalidResetToken = errors.New("invalid or already used reset token")
	ErrExpiredResetToken = errors.New("reset token has expired")
)

// ValidationError reports a policy-violating input. It carries a message the
// user can act on, unlike the opaque credential errors above.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
