// Package tokens mints credential pairs and exchanges renewal credentials
// for fresh access credentials.
//
// Renewal credentials are not rotated: a renewal keeps working until it
// expires or is revoked, and every exchange returns an access credential only.
package tokens

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/revocation"
	"github.com/google/uuid"
)

// TokenPair is what a successful login hands out.
type TokenPair struct {
	Access  auth.Credential
	Renewal auth.Credential
}

type Issuer struct {
	access   *auth.Codec
	renewal  *auth.Codec
	registry *revocation.Registry
	newID    func() string
}

func NewIssuer(access, renewal *auth.Codec, registry *revocation.Registry) *Issuer {
	return &Issuer{access: access, renewal: renewal, registry: registry, newID: uuid.NewString}
}

// IssuePair mints an access and a renewal credential for subjectID and
// registers the renewal id, so it is honoured from now until it expires.
func (i *Issuer) IssuePair(ctx context.Context, subjectID string) (*TokenPair, error) {
	access, err := i.access.Issue(subjectID, i.newID())
	if err != nil {
		return nil, err
	}

	renewal, err := i.renewal.Issue(subjectID, i.newID())
	if err != nil {
		return nil, err
	}

	if err := i.registry.Register(ctx, renewal.ID, renewal.ExpiresAt); err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Renewal: renewal}, nil
}

// RenewAccess verifies renewalToken, checks it is still registered and
// mints a new access credential for its subject.
//
// Errors: common.ErrInvalidToken, common.ErrTokenExpired,
// common.ErrSignatureMismatch, common.ErrRevoked, or a wrapped registry
// failure. The returned claims are non-nil whenever the credential was
// genuinely signed by us, including the failing cases, so the caller can
// evict its id.
func (i *Issuer) RenewAccess(ctx context.Context, renewalToken string) (auth.Credential, *auth.Claims, error) {
	claims, err := i.renewal.Verify(renewalToken)
	if err != nil {
		return auth.Credential{}, claims, err
	}

	ok, err := i.registry.IsValid(ctx, claims.ID)
	if err != nil {
		return auth.Credential{}, claims, err
	}
	if !ok {
		return auth.Credential{}, claims, common.ErrRevoked
	}

	access, err := i.access.Issue(claims.Subject, i.newID())
	if err != nil {
		return auth.Credential{}, claims, fmt.Errorf("issue access: %w", err)
	}
	return access, claims, nil
}

// VerifyAccess checks an access credential.
func (i *Issuer) VerifyAccess(token string) (*auth.Claims, error) {
	return i.access.Verify(token)
}

// InspectRenewal verifies a renewal credential without consulting the
// registry. Used by logout, which must work for expired credentials too.
func (i *Issuer) InspectRenewal(token string) (*auth.Claims, error) {
	return i.renewal.Verify(token)
}

// Revoke drops a renewal id from the registry.
func (i *Issuer) Revoke(ctx context.Context, renewalID string) error {
	return i.registry.Revoke(ctx, renewalID)
}
