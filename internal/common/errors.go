// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Account flow errors.
	ErrValidation          = errors.New("validation error")
	ErrAccountConflict     = errors.New("account conflict")
	ErrAlreadyRegistered   = fmt.Errorf("%w: already registered", ErrAccountConflict)
	ErrLinkedExternally    = fmt.Errorf("%w: linked via external provider", ErrAccountConflict)
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrPersistence         = errors.New("persistence error")
	ErrInternalConsistency = errors.New("internal consistency fault")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError reports client-fixable input problems. Violations keeps
// the individual messages so callers can render or assert on them.
type ValidationError struct {
	Violations []string
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Error joins the violations with single spaces.
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, " ")
}

// Is makes errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
