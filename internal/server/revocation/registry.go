// Package revocation keeps the set of renewal credential ids that are still
// honoured. Membership means "valid": an id that was never registered, was
// revoked, or whose expiry passed is never accepted again.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Store is the backing set. Every operation is atomic for a single id, so
// an Add is visible to any later Exists on any replica sharing the store.
type Store interface {
	// Add records id as valid until expiresAt. Adding an existing id is not an error.
	Add(ctx context.Context, id string, expiresAt time.Time) error
	// Exists reports whether id is present and not yet expired.
	Exists(ctx context.Context, id string) (bool, error)
	// Remove drops id. Removing an absent id is not an error.
	Remove(ctx context.Context, id string) error
	// Purge drops expired ids and returns how many went away.
	Purge(ctx context.Context) (int64, error)
}

var ErrEmptyID = errors.New("empty renewal id")

// Registry is the component the token issuer and session service consult.
type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

func (r *Registry) Register(ctx context.Context, id string, expiresAt time.Time) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := r.store.Add(ctx, id, expiresAt); err != nil {
		return fmt.Errorf("register renewal id: %w", err)
	}
	return nil
}

func (r *Registry) IsValid(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	ok, err := r.store.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("lookup renewal id: %w", err)
	}
	return ok, nil
}

// Revoke is idempotent.
func (r *Registry) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := r.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("revoke renewal id: %w", err)
	}
	return nil
}

func (r *Registry) Purge(ctx context.Context) (int64, error) {
	n, err := r.store.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge renewal ids: %w", err)
	}
	return n, nil
}

// RunPurger purges expired ids every interval until ctx is done.
func (r *Registry) RunPurger(ctx context.Context, interval time.Duration, logger logging.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.Purge(ctx)
			if err != nil {
				logger.Warn(ctx, "purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "purged expired renewal ids", "count", n)
			}
		}
	}
}
