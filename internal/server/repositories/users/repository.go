// Package users is the PostgreSQL identity store.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create inserts user unless its identity is already taken, in which
	// case the stored row is left untouched and created is false.
	Create(ctx context.Context, user *models.User) (created bool, err error)
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
