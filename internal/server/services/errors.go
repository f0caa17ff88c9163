package services

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Category is how a transport should present a flow error.
type Category int

const (
	CategoryInternal Category = iota
	CategoryValidation
	CategoryUnauthenticated
)

// Public messages for the categories clients are allowed to see.
const (
	MsgAlreadyRegistered  = "User already registered. Try signing in."
	MsgLinkedExternally   = "This account is linked to an external identity provider."
	MsgInvalidCredentials = "Invalid email or password."
	MsgInvalidToken       = "Invalid or expired token."
)

// Fallback messages for internal failures, per flow.
const (
	MsgRegisterFailed = "Error registering user."
	MsgLoginFailed    = "Error logging in."
	MsgMeFailed       = "Error loading profile."
)

// Classify maps an error returned by AccountService to a Category.
func Classify(err error) Category {
	switch {
	case errors.Is(err, common.ErrValidation):
		return CategoryValidation
	case errors.Is(err, common.ErrAccountConflict),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return CategoryUnauthenticated
	}
	return CategoryInternal
}

// PublicMessage returns the text safe to show a client. Internal failures
// collapse to fallback so storage details never leak.
func PublicMessage(err error, fallback string) string {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, common.ErrLinkedExternally):
		return MsgLinkedExternally
	case errors.Is(err, common.ErrAccountConflict):
		return MsgAlreadyRegistered
	case errors.Is(err, common.ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return MsgInvalidToken
	}
	return fallback
}

// Outcome is the metrics label for a flow result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrValidation):
		return "validation"
	case errors.Is(err, common.ErrAccountConflict):
		return "account_conflict"
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return "invalid_credentials"
	case errors.Is(err, common.ErrPersistence):
		return "persistence"
	case errors.Is(err, common.ErrInternalConsistency):
		return "internal_consistency"
	}
	return "internal"
}
