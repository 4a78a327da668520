// Package services contains application services for the gophauth client.
// This file defines the authentication service used by the CLI: sign-in,
// profile lookup, sign-out and a liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
)

// ErrNotSignedIn is returned by FetchProfile when no renewal credential is
// held locally, so there is nothing a request could be authorized with.
var ErrNotSignedIn = errors.New("not signed in")

const identityKey = "identity"

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and remember who signed in.
//   - FetchProfile: load the profile, only when a session exists locally.
//   - Logout: end the session on the server and locally.
//   - Status: the remembered identity and whether a session is held.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Login(ctx context.Context, identity string, secret []byte) (*models.Profile, error)
	FetchProfile(ctx context.Context) (*models.Profile, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (identity string, signedIn bool, err error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client and
// the local metadata table.
type authService struct {
	client   client.Client
	metadata metadata.Repository
}

func NewAuthService(c client.Client, repo metadata.Repository) AuthService {
	return &authService{client: c, metadata: repo}
}

func (a *authService) Login(ctx context.Context, identity string, secret []byte) (*models.Profile, error) {
	p, err := a.client.Login(ctx, identity, string(secret))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if err := a.metadata.Set(ctx, identityKey, []byte(identity)); err != nil {
		return nil, fmt.Errorf("save identity: %w", err)
	}
	return p, nil
}

func (a *authService) FetchProfile(ctx context.Context) (*models.Profile, error) {
	ok, err := a.client.HasSession(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotSignedIn
	}
	return a.client.Profile(ctx)
}

// Logout always forgets the remembered identity, even if the client could
// not reach the server.
func (a *authService) Logout(ctx context.Context) error {
	err := a.client.Logout(ctx)
	if derr := a.metadata.Delete(ctx, identityKey); derr != nil && err == nil {
		err = derr
	}
	return err
}

func (a *authService) Status(ctx context.Context) (string, bool, error) {
	ok, err := a.client.HasSession(ctx)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	identity, err := a.metadata.Get(ctx, identityKey)
	if err != nil {
		return "", true, err
	}
	return string(identity), true, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
