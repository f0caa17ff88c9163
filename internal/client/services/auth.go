// Package services contains application services for the gophauth client.
// AuthService registers and logs in through the server and keeps the
// resulting session in the local metadata table.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
)

// ErrNotLoggedIn is returned when no session is cached locally.
var ErrNotLoggedIn = errors.New("not logged in")

// AuthService defines authentication operations for the CLI.
//
// Register and Login persist the issued token so later invocations can
// Restore it. Logout only forgets the local session; tokens are not revoked
// server-side.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Restore(ctx context.Context) (string, error)
	WhoAmI(ctx context.Context) (*client.Account, error)
	Logout(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func (a *authService) sessions() metadata.Repository {
	return metadata.NewSQLiteRepository(a.db)
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) error {
	token, err := a.client.Register(ctx, username, email, string(password))
	if err != nil {
		return fmt.Errorf("register error: %w", err)
	}

	if err := a.saveSession(ctx, email, token); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	token, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, email, token); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, email, token string) error {
	return a.sessions().SaveSession(ctx, metadata.Session{Email: email, AccessToken: token})
}

// Restore loads a cached session into the client and returns its email.
func (a *authService) Restore(ctx context.Context) (string, error) {
	s, err := a.sessions().LoadSession(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", ErrNotLoggedIn
	}

	a.client.SetAccessToken(s.AccessToken)
	return s.Email, nil
}

// WhoAmI asks the server who the current token belongs to. A rejected token
// is dropped from the local cache.
func (a *authService) WhoAmI(ctx context.Context) (*client.Account, error) {
	acc, err := a.client.Me(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if clearErr := a.Logout(ctx); clearErr != nil {
				return nil, errors.Join(err, clearErr)
			}
		}
		return nil, err
	}
	return acc, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return a.sessions().ClearSession(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
