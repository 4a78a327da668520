package client

import (
	"context"
	"net"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/storage"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/revocation"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/tokens"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// backend is a real session service with a controllable clock.
type backend struct {
	sessions *services.SessionService
	issuer   *tokens.Issuer
	clock    *clock
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	clk := &clock{now: time.Now()}

	access, err := auth.NewCodec(auth.CodecConfig{Key: []byte("access"), Lifetime: time.Minute, Audience: auth.AudienceAccess, Now: clk.Now})
	require.NoError(t, err)
	renewal, err := auth.NewCodec(auth.CodecConfig{Key: []byte("renewal"), Lifetime: time.Hour, Audience: auth.AudienceRenewal, Now: clk.Now})
	require.NoError(t, err)

	users := identity.NewMemoryStore()
	_, err = identity.Seed(context.Background(), users, identity.DemoUsers, bcrypt.MinCost)
	require.NoError(t, err)

	issuer := tokens.NewIssuer(access, renewal, revocation.NewRegistry(revocation.NewMemoryStore()))
	return &backend{
		sessions: services.NewSessionService(users, issuer, logging.Nop{}),
		issuer:   issuer,
		clock:    clk,
	}
}

// serveGRPC starts the gRPC transport on a bufconn and returns the dial
// option reaching it.
func (b *backend) serveGRPC(t *testing.T) grpc.DialOption {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.NewGRPCServer("bufnet", logging.Nop{}, b.sessions).Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) })
}

func (b *backend) serveHTTP(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(httpapi.NewHandler(b.sessions, logging.Nop{}).Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

func newRenewalStore(t *testing.T) *storage.RenewalStore {
	t.Helper()
	repos, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return storage.NewRenewalStore(repos.Metadata)
}
