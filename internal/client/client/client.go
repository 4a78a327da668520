package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

type Client interface {
	Close() error
	Login(ctx context.Context, identity, secret string) (*models.Profile, error)
	Profile(ctx context.Context) (*models.Profile, error)
	Logout(ctx context.Context) error
	HasSession(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
}
