// Package grpc exposes SessionService over gRPC using the hand-written
// service description from internal/api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/grpc"
)

// Sessions is the part of services.SessionService the transport needs.
type Sessions interface {
	Login(ctx context.Context, identity, secret string) (*services.LoginResult, error)
	Renew(ctx context.Context, renewalToken string) (auth.Credential, error)
	Profile(ctx context.Context, accessToken string) (*models.Profile, error)
	Logout(ctx context.Context, renewalToken string) error
}

type GRPCServer struct {
	address  string
	sessions Sessions
	logger   logging.Logger
}

var _ api.SessionServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, sessions Sessions) *GRPCServer {
	return &GRPCServer{
		address:  address,
		sessions: sessions,
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterSessionServiceServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully once ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}
