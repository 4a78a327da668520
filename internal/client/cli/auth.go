package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for an identity and a secret and signs in. The secret is
// wiped before returning.
func (a *App) Login(ctx context.Context) error {
	identity, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	secret, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.authService.Login(ctx, identity, secret)
	switch {
	case err == nil:
		a.userName, a.signedIn = identity, true
		a.setMode(ModeOnline)
		fmt.Fprintf(a.out, "Signed in as %s\n", p.Name)
		return nil
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Invalid credentials")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
	}
	return err
}

// Profile fetches the signed-in user. An expired session signs the user out
// locally.
func (a *App) Profile(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	p, err := a.authService.FetchProfile(ctx)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, p.String())
		return nil
	case errors.Is(err, services.ErrNotSignedIn):
		fmt.Fprintln(a.out, "Not signed in, use 'login' first")
	case errors.Is(err, common.ErrUnauthenticated):
		a.userName, a.signedIn = "", false
		fmt.Fprintln(a.out, "Session expired, please log in again")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintf(a.out, "Profile failed: %v\n", err)
	}
	return err
}

// Status refreshes the prompt state from local storage and prints it.
func (a *App) Status(ctx context.Context) error {
	if err := a.restoreSession(ctx); err != nil {
		fmt.Fprintf(a.out, "Status unavailable: %v\n", err)
		return err
	}
	if !a.signedIn {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", a.userName)
	return nil
}

// Logout signs out on the server when reachable and always locally.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	err := a.authService.Logout(ctx)
	a.userName, a.signedIn = "", false
	if err != nil {
		fmt.Fprintf(a.out, "Signed out locally: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) restoreSession(ctx context.Context) error {
	identity, ok, err := a.authService.Status(ctx)
	if err != nil {
		return err
	}
	a.userName, a.signedIn = identity, ok
	return nil
}
