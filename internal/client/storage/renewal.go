// Package storage keeps the renewal credential in the client's local
// SQLite store so a session survives a restart.
package storage

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
)

const renewalTokenKey = "renewal_token"

// RenewalStore is the durable renewal slot of refresher.Coordinator.
type RenewalStore struct {
	repo metadata.Repository
}

func NewRenewalStore(repo metadata.Repository) *RenewalStore {
	return &RenewalStore{repo: repo}
}

func (s *RenewalStore) Load(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, renewalTokenKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Save stores token; an empty token empties the slot.
func (s *RenewalStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	return s.repo.Set(ctx, renewalTokenKey, []byte(token))
}

func (s *RenewalStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, renewalTokenKey)
}
