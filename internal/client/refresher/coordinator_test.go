package refresher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	token   string
	loadErr error
	clears  int
}

func (s *memStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.loadErr
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear refuses a finished context, like a database/sql backed store.
func (s *memStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.clears++
	return nil
}

func (s *memStore) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// server fakes a protected endpoint that accepts only the current access
// credential.
type server struct {
	mu     sync.Mutex
	valid  string
	calls  atomic.Int32
	renews atomic.Int32
}

func (s *server) setValid(tok string) {
	s.mu.Lock()
	s.valid = tok
	s.mu.Unlock()
}

func (s *server) call(_ context.Context, access string) error {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if access == "" || access != s.valid {
		return ErrUnauthenticatedResponse
	}
	return nil
}

func newCoordinator(t *testing.T, store *memStore, renew RenewFunc) *Coordinator {
	t.Helper()
	c := New(Config{Store: store, Renew: renew, Timeout: time.Second})
	require.NoError(t, c.SetCredentials(context.Background(), "old", "R"))
	return c
}

func TestDo_PassesThroughSuccessAndOtherErrors(t *testing.T) {
	renews := 0
	c := newCoordinator(t, &memStore{}, func(context.Context, string) (string, error) {
		renews++
		return "new", nil
	})

	var got string
	require.NoError(t, c.Do(context.Background(), func(_ context.Context, access string) error {
		got = access
		return nil
	}))
	assert.Equal(t, "old", got)

	boom := errors.New("boom")
	err := c.Do(context.Background(), func(context.Context, string) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, renews)
}

func TestDo_RenewsAndRetriesOnce(t *testing.T) {
	srv := &server{}
	srv.setValid("new")
	store := &memStore{}
	c := newCoordinator(t, store, func(_ context.Context, renewal string) (string, error) {
		srv.renews.Add(1)
		assert.Equal(t, "R", renewal)
		return "new", nil
	})

	require.NoError(t, c.Do(context.Background(), srv.call))
	assert.EqualValues(t, 2, srv.calls.Load())
	assert.EqualValues(t, 1, srv.renews.Load())
	assert.Equal(t, "new", c.AccessToken())
	assert.Equal(t, "R", store.get(), "renewal credential is not rotated")
}

func TestDo_NoDoubleRetry(t *testing.T) {
	var calls, renews atomic.Int32
	c := newCoordinator(t, &memStore{}, func(context.Context, string) (string, error) {
		renews.Add(1)
		return "new", nil
	})

	err := c.Do(context.Background(), func(context.Context, string) error {
		calls.Add(1)
		return ErrUnauthenticatedResponse
	})
	assert.ErrorIs(t, err, ErrUnauthenticatedResponse)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.EqualValues(t, 2, calls.Load())
	assert.EqualValues(t, 1, renews.Load())
}

func TestDo_SingleFlight(t *testing.T) {
	const n = 50

	srv := &server{}
	srv.setValid("new")

	release := make(chan struct{})
	c := newCoordinator(t, &memStore{}, func(context.Context, string) (string, error) {
		srv.renews.Add(1)
		<-release
		return "new", nil
	})

	var (
		wg        sync.WaitGroup
		firstSent sync.WaitGroup
		errs      = make(chan error, n)
	)
	firstSent.Add(n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var once sync.Once
			errs <- c.Do(context.Background(), func(ctx context.Context, access string) error {
				err := srv.call(ctx, access)
				once.Do(firstSent.Done)
				return err
			})
		}()
	}

	firstSent.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, srv.renews.Load())
	assert.EqualValues(t, 2*n, srv.calls.Load())
}

func TestDo_LateWaiterReusesFreshCredential(t *testing.T) {
	srv := &server{}
	srv.setValid("new")
	c := newCoordinator(t, &memStore{}, func(context.Context, string) (string, error) {
		srv.renews.Add(1)
		return "new", nil
	})

	// dispatched with "old" but renewed by someone else before it reacts
	fresh, err := c.renewed(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "new", fresh)

	fresh, err = c.renewed(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "new", fresh)
	assert.EqualValues(t, 1, srv.renews.Load())
}

func TestDo_FailedRenewalExpiresSessionForAllWaiters(t *testing.T) {
	const n = 10
	store := &memStore{}
	release := make(chan struct{})
	cause := errors.New("forbidden")
	var renews atomic.Int32

	c := newCoordinator(t, store, func(context.Context, string) (string, error) {
		renews.Add(1)
		<-release
		return "", cause
	})

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Do(context.Background(), func(context.Context, string) error { return ErrUnauthenticatedResponse })
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
	assert.Equal(t, "", c.AccessToken())
	assert.Equal(t, "", store.get())
	assert.LessOrEqual(t, renews.Load(), int32(n))

	ok, err := c.HasSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDo_FailureClearsBeforeWaitersResume(t *testing.T) {
	store := &memStore{}
	c := newCoordinator(t, store, func(context.Context, string) (string, error) {
		return "", errors.New("forbidden")
	})

	err := c.Do(context.Background(), func(context.Context, string) error { return ErrUnauthenticatedResponse })
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, "", store.get())
	assert.Equal(t, 1, store.clears)
}

func TestDo_NoRenewalCredential(t *testing.T) {
	renews := 0
	c := New(Config{Store: &memStore{}, Renew: func(context.Context, string) (string, error) {
		renews++
		return "new", nil
	}})

	err := c.Do(context.Background(), func(context.Context, string) error { return ErrUnauthenticatedResponse })
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, ErrNoRenewalCredential)
	assert.Zero(t, renews)
}

func TestDo_StoreLoadErrorFailsClosed(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk gone")}
	c := New(Config{Store: store, Renew: func(context.Context, string) (string, error) { return "new", nil }})

	err := c.Do(context.Background(), func(context.Context, string) error { return ErrUnauthenticatedResponse })
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestDo_RenewalTimeout(t *testing.T) {
	store := &memStore{}
	c := New(Config{Store: store, Timeout: 30 * time.Millisecond, Renew: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}})
	require.NoError(t, c.SetCredentials(context.Background(), "old", "R"))

	err := c.Do(context.Background(), func(context.Context, string) error { return ErrUnauthenticatedResponse })
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "", store.get(), "renewal credential must be dropped after a timeout")
	assert.Equal(t, 1, store.clears)

	ok, err := c.HasSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDo_CallerCancelDoesNotAbortFlight(t *testing.T) {
	release := make(chan struct{})
	srv := &server{}
	srv.setValid("new")
	c := newCoordinator(t, &memStore{}, func(ctx context.Context, _ string) (string, error) {
		select {
		case <-release:
			return "new", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Do(ctx, srv.call) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return c.AccessToken() == "new" }, time.Second, 5*time.Millisecond)
}

func TestClear_DuringFlightWins(t *testing.T) {
	release := make(chan struct{})
	store := &memStore{}
	c := newCoordinator(t, store, func(context.Context, string) (string, error) {
		<-release
		return "new", nil
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Do(context.Background(), func(context.Context, string) error { return ErrUnauthenticatedResponse })
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Clear(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrSessionExpired)
	assert.Equal(t, "", c.AccessToken())
	assert.Equal(t, "", store.get())
}

func TestSetCredentials_DuringFlightStartsFreshRenewal(t *testing.T) {
	release := make(chan struct{})
	var renews atomic.Int32
	srv := &server{}
	store := &memStore{}
	c := newCoordinator(t, store, func(_ context.Context, renewal string) (string, error) {
		if renews.Add(1) == 1 {
			<-release
			return "stale", nil
		}
		return "fresh-" + renewal, nil
	})

	oldDone := make(chan error, 1)
	go func() { oldDone <- c.Do(context.Background(), srv.call) }()
	require.Eventually(t, func() bool { return renews.Load() == 1 }, time.Second, time.Millisecond)

	// signed in again while the first renewal still hangs
	require.NoError(t, c.SetCredentials(context.Background(), "new", "R2"))
	srv.setValid("fresh-R2")

	err := c.Do(context.Background(), srv.call)
	require.NoError(t, err, "the new session must not inherit the old renewal")
	assert.Equal(t, int32(2), renews.Load())
	assert.Equal(t, "fresh-R2", c.AccessToken())

	close(release)
	assert.ErrorIs(t, <-oldDone, ErrSessionExpired)
	assert.Equal(t, "fresh-R2", c.AccessToken(), "old renewal must not overwrite the new session")
	assert.Equal(t, "R2", store.get())
}

func TestSetCredentials_AndAccessors(t *testing.T) {
	store := &memStore{}
	c := New(Config{Store: store, Renew: func(context.Context, string) (string, error) { return "", nil }})

	ok, err := c.HasSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetCredentials(context.Background(), "A", "R"))
	assert.Equal(t, "A", c.AccessToken())
	r, err := c.RenewalToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "R", r)

	// a restarted client has only the durable half
	restarted := New(Config{Store: store, Renew: func(context.Context, string) (string, error) { return "", nil }})
	ok, err = restarted.HasSession(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
