package models

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrForbidden is returned when the caller is authenticated but not allowed to act
	ErrForbidden = errors.New("forbidden")
	// ErrMissingCredentials is returned by login when email or password is empty
	ErrMissingCredentials = errors.New("email and password are required")
)

// ValidationError carries every input rule that was violated
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// NewValidationError returns nil when msgs is empty
func NewValidationError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Errors: msgs}
}

// Field names reported by ConflictError
const (
	FieldEmail    = "email"
	FieldUsername = "username"
)

// ConflictError lists the unique fields that are already taken
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return "conflict: " + strings.Join(e.Messages(), "; ")
}

// Messages renders one client-facing message per conflicting field
func (e *ConflictError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f+" is already taken")
	}
	return msgs
}
