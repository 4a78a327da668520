// Package server assembles and runs the gophauth server: it picks the
// identity and registry backends from the config, then serves the gRPC and
// HTTP transports and sweeps expired renewal ids until shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/revocation"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/tokens"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const startupTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	sessions *services.SessionService
	registry *revocation.Registry
	closers  []func() error
}

// backend is what a registry backend contributes to the app.
type backend struct {
	users  identity.Store
	store  revocation.Store
	closer func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	var (
		b   *backend
		err error
	)
	switch c.RegistryBackend {
	case config.BackendPostgres:
		b, err = openPostgres(ctx, c, logger)
	case config.BackendRedis:
		b, err = openRedis(ctx, c, logger)
	default:
		b, err = openMemory(ctx, c, logger)
	}
	if err != nil {
		return nil, err
	}

	access, err := auth.NewCodec(auth.CodecConfig{
		Key:      []byte(c.AccessSecretKey),
		Lifetime: c.AccessTokenValidityDuration,
		Audience: auth.AudienceAccess,
		Leeway:   c.ClockSkew,
	})
	if err != nil {
		return nil, closeOnError(b, fmt.Errorf("access codec: %w", err))
	}
	renewal, err := auth.NewCodec(auth.CodecConfig{
		Key:      []byte(c.RenewalSecretKey),
		Lifetime: c.RenewalTokenValidityDuration,
		Audience: auth.AudienceRenewal,
		Leeway:   c.ClockSkew,
	})
	if err != nil {
		return nil, closeOnError(b, fmt.Errorf("renewal codec: %w", err))
	}

	registry := revocation.NewRegistry(b.store)
	sessions := services.NewSessionService(b.users, tokens.NewIssuer(access, renewal, registry), logger)

	app := &App{config: c, logger: logger, sessions: sessions, registry: registry}
	if b.closer != nil {
		app.closers = append(app.closers, b.closer)
	}
	return app, nil
}

func closeOnError(b *backend, err error) error {
	if b.closer != nil {
		_ = b.closer()
	}
	return err
}

func seedIfEnabled(ctx context.Context, c *config.Config, creator identity.Creator, logger logging.Logger) error {
	if !c.SeedDemoUsers {
		return nil
	}
	n, err := identity.Seed(ctx, creator, identity.DemoUsers, 0)
	if err != nil {
		return err
	}
	logger.Info(ctx, "demo users seeded", "inserted", n)
	return nil
}

func openMemory(ctx context.Context, c *config.Config, logger logging.Logger) (*backend, error) {
	users := identity.NewMemoryStore()
	if err := seedIfEnabled(ctx, c, users, logger); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return &backend{users: users, store: revocation.NewMemoryStore()}, nil
}

// openRedis keeps users in memory and renewal ids in Redis, so several
// server instances can share one registry.
func openRedis(ctx context.Context, c *config.Config, logger logging.Logger) (*backend, error) {
	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	store := revocation.NewRedisStore(rdb, "")
	if err := store.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	users := identity.NewMemoryStore()
	if err := seedIfEnabled(ctx, c, users, logger); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return &backend{users: users, store: store, closer: rdb.Close}, nil
}

func openPostgres(ctx context.Context, c *config.Config, logger logging.Logger) (*backend, error) {
	db, err := dbx.Open(ctx, "pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return seedIfEnabled(ctx, c, rm.Users(tx), logger)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	return &backend{users: rm.Users(db), store: rm.Renewals(db), closer: db.Close}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a termination signal arrives or one
// of the servers fails, then releases the backend.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "registry_backend", app.config.RegistryBackend)
	app.initSignalHandler(cancelFunc)

	err := app.serve(ctx)

	for _, closeFn := range app.closers {
		if cerr := closeFn(); cerr != nil {
			app.logger.Warn(ctx, "closing backend", "error", cerr)
		}
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}

func (app *App) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions).Run(ctx)
	})

	if app.config.EndpointAddrHTTP != "" {
		g.Go(func() error {
			return httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.sessions).Run(ctx)
		})
	}

	g.Go(func() error {
		return app.registry.RunPurger(ctx, app.config.PurgeInterval, app.logger.With("module", "registry_purger"))
	})

	return g.Wait()
}
