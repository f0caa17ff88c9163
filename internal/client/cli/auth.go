package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are swapped out in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a display name, email and password and creates the
// account. On success the new session is cached and the user is logged in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.authService.Register(callCtx, username, email, password); err != nil {
		a.report("Registration failed", err)
		return err
	}

	a.email = email
	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials and caches the session on success.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.authService.Login(callCtx, email, password); err != nil {
		a.report("Login unsuccessful", err)
		return err
	}

	a.email = email
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// WhoAmI prints the account behind the cached token.
func (a *App) WhoAmI(ctx context.Context) error {
	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	acc, err := a.authService.WhoAmI(callCtx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			a.email = ""
		}
		a.report("Cannot load profile", err)
		return err
	}

	fmt.Fprintf(a.out, "User ID:      %s\n", acc.UserID)
	fmt.Fprintf(a.out, "Profile ID:   %s\n", acc.ProfileID)
	fmt.Fprintf(a.out, "Email:        %s\n", acc.Email)
	fmt.Fprintf(a.out, "Display name: %s\n", acc.DisplayName)
	if acc.Bio != "" {
		fmt.Fprintf(a.out, "Bio:          %s\n", acc.Bio)
	}
	fmt.Fprintf(a.out, "Avatar:       %s\n", acc.AvatarURL)
	fmt.Fprintf(a.out, "Linkage:      %s\n", acc.LinkageType)
	fmt.Fprintf(a.out, "Admin:        %t\n", acc.IsAdmin)
	fmt.Fprintf(a.out, "Created at:   %s\n", acc.CreatedAt)
	return nil
}

// Logout forgets the cached session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report("Logout failed", err)
		return err
	}
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// report prints err for the user, preferring the server's own wording.
func (a *App) report(action string, err error) {
	var se *client.ServerError
	switch {
	case errors.As(err, &se):
		fmt.Fprintf(a.out, "%s: %s\n", action, se.Message)
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintf(a.out, "%s: server unavailable\n", action)
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintf(a.out, "%s: not logged in\n", action)
	default:
		fmt.Fprintf(a.out, "%s: %v\n", action, err)
	}
}
