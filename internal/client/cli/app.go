package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/storage"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 30 * time.Second

type App struct {
	config      *config.Config
	authService services.AuthService
	logger      logging.Logger
	userName    string
	signedIn    bool
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local store at c.StoragePath and connects the transport
// selected by c.Transport.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	path, err := filex.EnsureFileDir(c.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("storage path: %w", err)
	}

	repos, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	opts := client.Options{
		Store:        storage.NewRenewalStore(repos.Metadata),
		RenewTimeout: c.RenewTimeout,
		Logger:       logger,
	}

	var apiClient client.Client
	switch c.Transport {
	case config.TransportHTTP:
		apiClient = client.NewHTTPClient(c.HTTPEndpointURL, opts, nil)
	default:
		apiClient, err = client.NewGRPCClient(c.ServerEndpointAddr, opts)
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
	}

	as := services.NewAuthService(&closingClient{Client: apiClient, repos: repos}, repos.Metadata)
	return newApp(c, as, logger, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, as services.AuthService, logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:      c,
		authService: as,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// closingClient closes the local store together with the connection.
type closingClient struct {
	client.Client
	repos *client.Repositories
}

func (c *closingClient) Close() error {
	err := c.Client.Close()
	if rerr := c.repos.Close(); err == nil {
		err = rerr
	}
	return err
}

// setMode is called from the connectivity watcher as well as the REPL.
func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.signedIn
}

// requestContext bounds one user-initiated call.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
