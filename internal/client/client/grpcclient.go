package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/refresher"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Options are shared by both client implementations.
type Options struct {
	Store        refresher.TokenStore
	RenewTimeout time.Duration
	Logger       logging.Logger
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.Nop{}
	}
	return o.Logger.With("module", "client")
}

// unprotectedMethods never carry an access credential and never trigger
// a renewal.
var unprotectedMethods = map[string]struct{}{
	api.SessionService_Login_FullMethodName:  {},
	api.SessionService_Renew_FullMethodName:  {},
	api.SessionService_Logout_FullMethodName: {},
	api.SessionService_Ping_FullMethodName:   {},
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.SessionServiceClient
	tokens      *refresher.Coordinator
	logger      logging.Logger
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	md.Delete(common.AuthorizationHeaderName)
	if token != "" {
		md.Set(common.AuthorizationHeaderName, netx.BearerHeader(token))
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := unprotectedMethods[method]; ok {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	return s.tokens.Do(ctx, func(ctx context.Context, accessToken string) error {
		return invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	})
}

func isUnauthenticated(err error) bool {
	return status.Code(err) == codes.Unauthenticated
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL string, o Options, dialOpts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, logger: o.logger()}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, dialOpts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewSessionServiceClient(conn)
	c.tokens = refresher.New(refresher.Config{
		Store:             o.Store,
		Renew:             c.renew,
		IsUnauthenticated: isUnauthenticated,
		Timeout:           o.RenewTimeout,
		Logger:            o.Logger,
	})
	return c, nil
}

func (s *GRPCClient) renew(ctx context.Context, renewalToken string) (string, error) {
	resp, err := s.client.Renew(ctx, &api.RenewRequest{RenewalToken: renewalToken})
	if err != nil {
		return "", mapGRPCError(err)
	}
	return resp.AccessToken, nil
}

func (s *GRPCClient) Login(ctx context.Context, identity, secret string) (*models.Profile, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Identity: identity, Secret: secret})
	if err != nil {
		return nil, mapGRPCError(err)
	}

	if err := s.tokens.SetCredentials(ctx, resp.AccessToken, resp.RenewalToken); err != nil {
		return nil, err
	}
	return fromAPIProfile(resp.Profile), nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*models.Profile, error) {
	resp, err := s.client.Profile(ctx, &api.ProfileRequest{})
	if err != nil {
		return nil, mapGRPCError(err)
	}
	return fromAPIProfile(resp), nil
}

// Logout tells the server to revoke the renewal credential, then forgets
// both credentials. Server errors do not keep the local session alive.
func (s *GRPCClient) Logout(ctx context.Context) error {
	renewal, err := s.tokens.RenewalToken(ctx)
	if err == nil && renewal != "" {
		if _, lerr := s.client.Logout(ctx, &api.LogoutRequest{RenewalToken: renewal}); lerr != nil {
			s.logger.Warn(ctx, "server logout failed, signing out locally", "error", mapGRPCError(lerr))
		}
	}
	return s.tokens.Clear(ctx)
}

func (s *GRPCClient) HasSession(ctx context.Context) (bool, error) {
	return s.tokens.HasSession(ctx)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return mapGRPCError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func fromAPIProfile(p *api.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	return &models.Profile{ID: p.ID, Identity: p.Identity, Name: p.Name}
}
