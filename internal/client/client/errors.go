package client

import "errors"

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

// ServerError keeps the server's message next to the sentinel it maps to.
type ServerError struct {
	Kind    error
	Message string
}

func (e *ServerError) Error() string { return e.Kind.Error() + ": " + e.Message }

func (e *ServerError) Unwrap() error { return e.Kind }
