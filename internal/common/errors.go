// Package common defines shared constants and sentinel errors used across
// the client and server sides of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. These are the only outcomes a remote caller can
	// observe; the reason behind them stays on the server.
	ErrUnauthorized    = errors.New("invalid credentials")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("invalid renewal token")
	ErrNotFound        = errors.New("user not found")
	ErrInternal        = errors.New("internal error")
	ErrInvalidArgument = errors.New("invalid argument")

	// Credential codec errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSignatureMismatch  = errors.New("token signature mismatch")
	ErrRevoked            = errors.New("renewal token revoked")
	ErrMissingCredentials = errors.New("missing token")
)
