package inkwell

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrPermission is returned when the acting user fails the gate for an
// operation. Nothing is mutated when it is returned.
var ErrPermission = errors.New("permission denied")

// ErrInvalidLogin is returned on unknown username or wrong password.
var ErrInvalidLogin = errors.New("invalid username or password")

// ValidationError reports malformed input back to the originating form.
// Field names match the form field that caused the failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// isUniqueViolation detects a SQLite unique-constraint failure. The
// driver exposes no typed error for this, so match the message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
