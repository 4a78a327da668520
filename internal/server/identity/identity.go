// Package identity is the narrow view the session service has of the user
// directory: look a user up and check a secret. The directory itself is a
// collaborator; this package ships an in-memory one and seeding helpers,
// and the PostgreSQL one lives in repositories/users.
package identity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Store finds users. Missing users are reported as common.ErrorNotFound.
type Store interface {
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Creator adds users, skipping identities that already exist.
type Creator interface {
	Create(ctx context.Context, user *models.User) (bool, error)
}

// VerifySecret checks secret against user's stored hash. A nil user costs
// the same as a real comparison and yields false.
func VerifySecret(user *models.User, secret string) bool {
	if user == nil {
		return cryptox.CompareSecret(nil, secret)
	}
	return cryptox.CompareSecret(user.SecretHash, secret)
}

// SeedUser is a user to provision at startup, secret in clear text.
type SeedUser struct {
	ID       string
	Identity string
	Secret   string
	Name     string
}

// DemoUsers are the two accounts the reference deployment starts with.
var DemoUsers = []SeedUser{
	{ID: "1", Identity: "user@example.com", Secret: "password123", Name: "John Doe"},
	{ID: "2", Identity: "admin@example.com", Secret: "admin123", Name: "Jane Admin"},
}

// Seed hashes and creates every user in seed. It returns how many were
// actually inserted; existing identities are left alone.
func Seed(ctx context.Context, c Creator, seed []SeedUser, cost int) (int, error) {
	inserted := 0
	for _, su := range seed {
		hash, err := cryptox.HashSecret(su.Secret, cost)
		if err != nil {
			return inserted, err
		}
		created, err := c.Create(ctx, &models.User{ID: su.ID, Identity: su.Identity, Name: su.Name, SecretHash: hash})
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", su.Identity, err)
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}
