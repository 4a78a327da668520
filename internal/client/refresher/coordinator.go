// Package refresher keeps a client's access credential usable. Every
// protected call goes through Coordinator.Do; when the server answers
// "unauthenticated" the coordinator exchanges the stored renewal credential
// for a new access credential and re-sends the call once.
//
// Concurrent calls that fail at the same time share a single renewal. The
// renewal runs detached from any caller's context and is bounded by its own
// timeout. When it fails, both credentials are dropped before any waiter
// sees the error, and every waiter gets ErrSessionExpired.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

var (
	// ErrSessionExpired means the session cannot be renewed and the user
	// has to sign in again.
	ErrSessionExpired = errors.New("session expired, sign in again")

	// ErrNoRenewalCredential is the cause of ErrSessionExpired when no
	// renewal credential is stored.
	ErrNoRenewalCredential = errors.New("no renewal credential")

	// ErrUnauthenticatedResponse is returned by calls whose response says
	// the access credential was rejected. The default classifier matches it.
	ErrUnauthenticatedResponse = errors.New("unauthenticated response")

	errSignedOut = errors.New("signed out during renewal")
)

const DefaultRenewTimeout = 10 * time.Second

// clearTimeout bounds dropping the renewal credential after a failed renewal.
const clearTimeout = 5 * time.Second

// TokenStore is the durable slot holding the renewal credential. Load
// returns "" when the slot is empty.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// RenewFunc exchanges a renewal credential for a new access credential.
type RenewFunc func(ctx context.Context, renewalToken string) (string, error)

// Classifier reports whether err means the access credential was rejected.
type Classifier func(err error) bool

// Config wires a Coordinator. Store and Renew are required.
type Config struct {
	Store             TokenStore
	Renew             RenewFunc
	IsUnauthenticated Classifier
	Timeout           time.Duration
	Logger            logging.Logger
}

type flight struct {
	done  chan struct{}
	token string
	err   error
}

type Coordinator struct {
	store           TokenStore
	renew           RenewFunc
	unauthenticated Classifier
	timeout         time.Duration
	logger          logging.Logger

	mu      sync.Mutex
	access  string
	epoch   uint64
	pending *flight
}

func New(cfg Config) *Coordinator {
	c := &Coordinator{
		store:           cfg.Store,
		renew:           cfg.Renew,
		unauthenticated: cfg.IsUnauthenticated,
		timeout:         cfg.Timeout,
		logger:          cfg.Logger,
	}
	if c.unauthenticated == nil {
		c.unauthenticated = func(err error) bool { return errors.Is(err, ErrUnauthenticatedResponse) }
	}
	if c.timeout <= 0 {
		c.timeout = DefaultRenewTimeout
	}
	if c.logger == nil {
		c.logger = logging.Nop{}
	}
	c.logger = c.logger.With("module", "refresher")
	return c
}

// Do runs call with the current access credential. If the outcome is
// classified as unauthenticated, call runs once more with a renewed
// credential and that second outcome is returned as is.
func (c *Coordinator) Do(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	sent := c.AccessToken()

	err := call(ctx, sent)
	if err == nil || !c.unauthenticated(err) {
		return err
	}

	fresh, err := c.renewed(ctx, sent)
	if err != nil {
		return err
	}
	return call(ctx, fresh)
}

// renewed returns an access credential newer than sent, joining the
// pending renewal or starting one.
func (c *Coordinator) renewed(ctx context.Context, sent string) (string, error) {
	c.mu.Lock()
	if c.access != "" && c.access != sent {
		token := c.access
		c.mu.Unlock()
		return token, nil
	}

	f := c.pending
	if f == nil {
		f = &flight{done: make(chan struct{})}
		c.pending = f
		go c.fly(f, c.epoch)
	}
	c.mu.Unlock()

	select {
	case <-f.done:
		return f.token, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) fly(f *flight, epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	token, err := c.exchange(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.epoch != epoch:
		// signed out or signed in again meanwhile; the result belongs to
		// a session that no longer exists
		token, err = "", fmt.Errorf("%w: %w", ErrSessionExpired, errSignedOut)
	case err != nil:
		c.logger.Warn(ctx, "renewal failed, dropping credentials", "error", err)
		c.access = ""
		// ctx may already be past its deadline; the clear gets its own
		clearCtx, clearCancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
		if cerr := c.store.Clear(clearCtx); cerr != nil {
			c.logger.Error(ctx, "clearing renewal credential failed", "error", cerr)
		}
		clearCancel()
		token, err = "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	default:
		c.access = token
		c.logger.Debug(ctx, "access credential renewed")
	}

	if c.pending == f {
		c.pending = nil
	}
	f.token, f.err = token, err
	close(f.done)
}

func (c *Coordinator) exchange(ctx context.Context) (string, error) {
	renewal, err := c.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load renewal credential: %w", err)
	}
	if renewal == "" {
		return "", ErrNoRenewalCredential
	}

	token, err := c.renew(ctx, renewal)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.New("empty access credential")
	}
	return token, nil
}

// SetCredentials starts a new session, typically after a login.
func (c *Coordinator) SetCredentials(ctx context.Context, accessToken, renewalToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(ctx, renewalToken); err != nil {
		return fmt.Errorf("save renewal credential: %w", err)
	}
	c.access = accessToken
	c.newEpoch()
	return nil
}

// Clear ends the session locally. A renewal still in flight will not
// bring it back.
func (c *Coordinator) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.access = ""
	c.newEpoch()
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear renewal credential: %w", err)
	}
	return nil
}

// newEpoch starts a new session. A renewal still in flight keeps its
// waiters but is no longer joined by new callers. Must hold c.mu.
func (c *Coordinator) newEpoch() {
	c.epoch++
	c.pending = nil
}

func (c *Coordinator) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

func (c *Coordinator) RenewalToken(ctx context.Context) (string, error) {
	return c.store.Load(ctx)
}

// HasSession reports whether either credential is present.
func (c *Coordinator) HasSession(ctx context.Context) (bool, error) {
	if c.AccessToken() != "" {
		return true, nil
	}
	renewal, err := c.store.Load(ctx)
	if err != nil {
		return false, err
	}
	return renewal != "", nil
}
