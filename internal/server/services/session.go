// Package services contains server-side business logic. SessionService is
// the boundary behind both transports: it logs users in, exchanges renewal
// credentials, serves the profile and logs users out.
//
// Callers only ever see the sentinels from internal/common. Why a renewal
// was refused is logged here and never leaves the server.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/tokens"
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken  string
	RenewalToken string
	Profile      *models.Profile
}

type SessionService struct {
	users  identity.Store
	tokens *tokens.Issuer
	logger logging.Logger
}

func NewSessionService(users identity.Store, issuer *tokens.Issuer, logger logging.Logger) *SessionService {
	return &SessionService{users: users, tokens: issuer, logger: logger.With("module", "session_service")}
}

// Login checks the identity's secret and issues a credential pair.
// An unknown identity and a wrong secret both yield common.ErrUnauthorized.
func (s *SessionService) Login(ctx context.Context, ident, secret string) (*LoginResult, error) {
	user, err := s.users.FindByIdentity(ctx, ident)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			identity.VerifySecret(nil, secret)
			return nil, common.ErrUnauthorized
		}
		s.logger.Error(ctx, "identity lookup failed", "error", err)
		return nil, common.ErrInternal
	}

	if !identity.VerifySecret(user, secret) {
		return nil, common.ErrUnauthorized
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "issuing credentials failed", "subject", user.ID, "error", err)
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "login", "subject", user.ID, "renewal_id", pair.Renewal.ID)
	return &LoginResult{
		AccessToken:  pair.Access.Token,
		RenewalToken: pair.Renewal.Token,
		Profile:      user.Profile(),
	}, nil
}

// Renew exchanges a renewal credential for a new access credential.
// Every failure is reported as common.ErrForbidden.
func (s *SessionService) Renew(ctx context.Context, renewalToken string) (auth.Credential, error) {
	if renewalToken == "" {
		return auth.Credential{}, common.ErrForbidden
	}

	cred, claims, err := s.tokens.RenewAccess(ctx, renewalToken)
	if err != nil {
		s.reject(ctx, claims, err)
		return auth.Credential{}, common.ErrForbidden
	}

	if _, err := s.users.FindByID(ctx, claims.Subject); err != nil {
		s.reject(ctx, claims, err)
		return auth.Credential{}, common.ErrForbidden
	}

	return cred, nil
}

// reject logs why a renewal was refused and, when the credential is ours
// and can never succeed again, evicts its id.
func (s *SessionService) reject(ctx context.Context, claims *auth.Claims, reason error) {
	if claims == nil {
		s.logger.Warn(ctx, "renewal rejected", "reason", reason)
		return
	}

	s.logger.Warn(ctx, "renewal rejected", "reason", reason, "subject", claims.Subject, "renewal_id", claims.ID)

	if !evictable(reason) {
		return
	}
	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		s.logger.Error(ctx, "evicting renewal id failed", "renewal_id", claims.ID, "error", err)
	}
}

func evictable(reason error) bool {
	return errors.Is(reason, common.ErrTokenExpired) ||
		errors.Is(reason, common.ErrRevoked) ||
		errors.Is(reason, common.ErrorNotFound)
}

// Profile resolves the subject of a valid access credential.
func (s *SessionService) Profile(ctx context.Context, accessToken string) (*models.Profile, error) {
	if accessToken == "" {
		return nil, common.ErrUnauthenticated
	}

	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrNotFound
		}
		s.logger.Error(ctx, "identity lookup failed", "subject", claims.Subject, "error", err)
		return nil, common.ErrInternal
	}
	return user.Profile(), nil
}

// Logout revokes the renewal credential if it is one of ours, expired or
// not. It never fails: the caller signs out locally regardless.
func (s *SessionService) Logout(ctx context.Context, renewalToken string) error {
	if renewalToken == "" {
		return nil
	}

	claims, err := s.tokens.InspectRenewal(renewalToken)
	if claims == nil {
		s.logger.Info(ctx, "logout with unusable renewal token", "reason", err)
		return nil
	}

	if err := s.tokens.Revoke(ctx, claims.ID); err != nil {
		s.logger.Error(ctx, "revoking renewal id failed", "renewal_id", claims.ID, "error", err)
		return nil
	}

	s.logger.Info(ctx, "logout", "subject", claims.Subject, "renewal_id", claims.ID)
	return nil
}
