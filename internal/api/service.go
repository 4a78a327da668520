package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophauth.v1.SessionService"

const (
	SessionService_Login_FullMethodName   = "/" + ServiceName + "/Login"
	SessionService_Renew_FullMethodName   = "/" + ServiceName + "/Renew"
	SessionService_Profile_FullMethodName = "/" + ServiceName + "/Profile"
	SessionService_Logout_FullMethodName  = "/" + ServiceName + "/Logout"
	SessionService_Ping_FullMethodName    = "/" + ServiceName + "/Ping"
)

// SessionServiceServer is implemented by the gRPC transport of the server.
type SessionServiceServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Renew(context.Context, *RenewRequest) (*RenewResponse, error)
	Profile(context.Context, *ProfileRequest) (*Profile, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionService_ServiceDesc, srv)
}

// unary adapts a typed server method to grpc.MethodHandler, running the
// server interceptor chain the same way generated code does.
func unary[Req, Resp any](fullMethod string, call func(SessionServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var SessionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: unary(SessionService_Login_FullMethodName, SessionServiceServer.Login)},
		{MethodName: "Renew", Handler: unary(SessionService_Renew_FullMethodName, SessionServiceServer.Renew)},
		{MethodName: "Profile", Handler: unary(SessionService_Profile_FullMethodName, SessionServiceServer.Profile)},
		{MethodName: "Logout", Handler: unary(SessionService_Logout_FullMethodName, SessionServiceServer.Logout)},
		{MethodName: "Ping", Handler: unary(SessionService_Ping_FullMethodName, SessionServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/api/service.go",
}

// SessionServiceClient is the client stub.
type SessionServiceClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Renew(ctx context.Context, in *RenewRequest, opts ...grpc.CallOption) (*RenewResponse, error)
	Profile(ctx context.Context, in *ProfileRequest, opts ...grpc.CallOption) (*Profile, error)
	Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type sessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) SessionServiceClient {
	return &sessionServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{CallOption()}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, SessionService_Login_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Renew(ctx context.Context, in *RenewRequest, opts ...grpc.CallOption) (*RenewResponse, error) {
	return invoke[RenewResponse](ctx, c.cc, SessionService_Renew_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Profile(ctx context.Context, in *ProfileRequest, opts ...grpc.CallOption) (*Profile, error) {
	return invoke[Profile](ctx, c.cc, SessionService_Profile_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, SessionService_Logout_FullMethodName, in, opts)
}

func (c *sessionServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, SessionService_Ping_FullMethodName, in, opts)
}
