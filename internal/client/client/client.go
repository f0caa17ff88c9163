package client

import (
	"context"
)

// Account is the caller's identity and profile as reported by Me.
type Account struct {
	UserID      string
	ProfileID   string
	IsAdmin     bool
	Email       string
	DisplayName string
	Bio         string
	AvatarURL   string
	LinkageType string
	CreatedAt   string
}

// Client is the account API as seen by the CLI.
type Client interface {
	Close() error
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Me(ctx context.Context) (*Account, error)
	SetAccessToken(token string)
}
