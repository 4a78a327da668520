package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	res, err := s.sessions.Login(ctx, req.Identity, req.Secret)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.LoginResponse{
		AccessToken:  res.AccessToken,
		RenewalToken: res.RenewalToken,
		Profile:      toProfile(res.Profile),
	}, nil
}

func (s *GRPCServer) Renew(ctx context.Context, req *api.RenewRequest) (*api.RenewResponse, error) {
	cred, err := s.sessions.Renew(ctx, req.RenewalToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.RenewResponse{AccessToken: cred.Token}, nil
}

func (s *GRPCServer) Profile(ctx context.Context, _ *api.ProfileRequest) (*api.Profile, error) {
	p, err := s.sessions.Profile(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toProfile(p), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *api.LogoutRequest) (*api.LogoutResponse, error) {
	if err := s.sessions.Logout(ctx, req.RenewalToken); err != nil {
		return nil, toStatus(err)
	}
	return &api.LogoutResponse{Message: "logged out"}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func toProfile(p *models.Profile) *api.Profile {
	if p == nil {
		return nil
	}
	return &api.Profile{ID: p.ID, Identity: p.Identity, Name: p.Name}
}
