package client

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/refresher"
	"github.com/dmitrijs2005/gophauth/internal/client/storage"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type factory func(t *testing.T, b *backend, store *storage.RenewalStore) Client

func grpcFactory(t *testing.T, b *backend, store *storage.RenewalStore) Client {
	t.Helper()
	c, err := NewGRPCClient("passthrough:///bufnet", Options{Store: store, RenewTimeout: time.Second}, b.serveGRPC(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func httpFactory(t *testing.T, b *backend, store *storage.RenewalStore) Client {
	t.Helper()
	c := NewHTTPClient(b.serveHTTP(t), Options{Store: store, RenewTimeout: time.Second}, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

var factories = map[string]factory{"grpc": grpcFactory, "http": httpFactory}

var john = &models.Profile{ID: "1", Identity: "user@example.com", Name: "John Doe"}

func forEachTransport(t *testing.T, fn func(t *testing.T, b *backend, store *storage.RenewalStore, c Client)) {
	for name, f := range factories {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			store := newRenewalStore(t)
			fn(t, b, store, f(t, b, store))
		})
	}
}

func TestClient_LoginProfilePing(t *testing.T) {
	forEachTransport(t, func(t *testing.T, b *backend, store *storage.RenewalStore, c Client) {
		ctx := context.Background()
		require.NoError(t, c.Ping(ctx))

		p, err := c.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, john, p)

		p, err = c.Profile(ctx)
		require.NoError(t, err)
		assert.Equal(t, john, p)

		renewal, err := store.Load(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, renewal)
	})
}

func TestClient_WrongSecretIsUnauthorized(t *testing.T) {
	forEachTransport(t, func(t *testing.T, b *backend, store *storage.RenewalStore, c Client) {
		_, err := c.Login(context.Background(), "user@example.com", "nope")
		assert.ErrorIs(t, err, common.ErrUnauthorized)

		ok, err := c.HasSession(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestClient_ExpiredAccessIsRenewedTransparently(t *testing.T) {
	forEachTransport(t, func(t *testing.T, b *backend, store *storage.RenewalStore, c Client) {
		ctx := context.Background()
		_, err := c.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		b.clock.Advance(2 * time.Minute)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.Profile(ctx)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	})
}

func TestClient_RevokedRenewalExpiresSession(t *testing.T) {
	forEachTransport(t, func(t *testing.T, b *backend, store *storage.RenewalStore, c Client) {
		ctx := context.Background()
		_, err := c.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		renewal, err := store.Load(ctx)
		require.NoError(t, err)
		require.NoError(t, b.sessions.Logout(ctx, renewal))

		b.clock.Advance(2 * time.Minute)

		_, err = c.Profile(ctx)
		assert.ErrorIs(t, err, common.ErrUnauthenticated)
		assert.ErrorIs(t, err, refresher.ErrSessionExpired)

		renewal, err = store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, renewal, "renewal credential must be dropped")
	})
}

func TestClient_LogoutEndsSession(t *testing.T) {
	forEachTransport(t, func(t *testing.T, b *backend, store *storage.RenewalStore, c Client) {
		ctx := context.Background()
		_, err := c.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		renewal, err := store.Load(ctx)
		require.NoError(t, err)

		require.NoError(t, c.Logout(ctx))
		require.NoError(t, c.Logout(ctx))

		ok, err := c.HasSession(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = c.Profile(ctx)
		assert.ErrorIs(t, err, common.ErrUnauthenticated)

		// the server revoked it as well
		_, err = b.sessions.Renew(ctx, renewal)
		assert.ErrorIs(t, err, common.ErrForbidden)
	})
}

func TestClient_SessionSurvivesRestart(t *testing.T) {
	for name, f := range factories {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			store := newRenewalStore(t)
			ctx := context.Background()

			_, err := f(t, b, store).Login(ctx, "user@example.com", "password123")
			require.NoError(t, err)

			restarted := f(t, b, store)
			ok, err := restarted.HasSession(ctx)
			require.NoError(t, err)
			assert.True(t, ok)

			p, err := restarted.Profile(ctx)
			require.NoError(t, err)
			assert.Equal(t, john, p)
		})
	}
}

func TestCoordinator_RenewalTimeoutClearsStoredCredential(t *testing.T) {
	store := newRenewalStore(t)
	ctx := context.Background()

	tokens := refresher.New(refresher.Config{
		Store:   store,
		Timeout: 50 * time.Millisecond,
		Renew: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	})
	require.NoError(t, tokens.SetCredentials(ctx, "access-1", "renewal-1"))

	err := tokens.Do(ctx, func(context.Context, string) error { return refresher.ErrUnauthenticatedResponse })
	require.ErrorIs(t, err, refresher.ErrSessionExpired)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	renewal, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, renewal, "renewal credential must be dropped after a timed out renewal")

	ok, err := tokens.HasSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

type warnLogger struct {
	logging.Nop
	mu    sync.Mutex
	warns []string
}

func (l *warnLogger) Warn(_ context.Context, msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *warnLogger) With(...any) logging.Logger { return l }

func TestClient_LogoutWhileServerDownWarnsAndClears(t *testing.T) {
	unreachable := map[string]func(t *testing.T, o Options) (Client, *refresher.Coordinator){
		"grpc": func(t *testing.T, o Options) (Client, *refresher.Coordinator) {
			dialer := grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
				return nil, errors.New("connection refused")
			})
			c, err := NewGRPCClient("passthrough:///down", o, dialer)
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })
			return c, c.tokens
		},
		"http": func(t *testing.T, o Options) (Client, *refresher.Coordinator) {
			srv := httptest.NewServer(nil)
			srv.Close()
			c := NewHTTPClient(srv.URL, o, nil)
			return c, c.tokens
		},
	}

	for name, open := range unreachable {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			logger := &warnLogger{}
			store := newRenewalStore(t)
			c, tokens := open(t, Options{Store: store, RenewTimeout: time.Second, Logger: logger})
			require.NoError(t, tokens.SetCredentials(ctx, "access-1", "renewal-1"))

			require.NoError(t, c.Logout(ctx))

			ok, err := c.HasSession(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			logger.mu.Lock()
			defer logger.mu.Unlock()
			assert.Equal(t, []string{"server logout failed, signing out locally"}, logger.warns)
		})
	}
}
