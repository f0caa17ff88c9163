// Package metadata keeps the CLI session in the local sqlite database: the
// access token and the email it was issued for, one row each in the
// metadata table.
package metadata

import (
	"context"
)

// Row keys in the metadata table.
const (
	KeyAccessToken = "access_token"
	KeyEmail       = "email"
)

// Session is what a successful register or login leaves behind.
type Session struct {
	Email       string
	AccessToken string
}

// Repository stores at most one Session.
type Repository interface {
	// SaveSession replaces the stored session.
	SaveSession(ctx context.Context, s Session) error
	// LoadSession returns (nil, nil) when no token is stored.
	LoadSession(ctx context.Context) (*Session, error)
	// ClearSession is a no-op when nothing is stored.
	ClearSession(ctx context.Context) error
}
