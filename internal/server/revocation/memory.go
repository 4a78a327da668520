package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps ids in process memory. Suitable for tests and a
// single server instance; state is lost on restart.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Add(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = expiresAt
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.ids[id]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.ids, id)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, id)
	return nil
}

func (s *MemoryStore) Purge(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, exp := range s.ids {
		if !now.Before(exp) {
			delete(s.ids, id)
			n++
		}
	}
	return n, nil
}

// Len is the number of ids currently held, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
