package identity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// MemoryStore is a process-local user directory.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byIdentity map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*models.User),
		byIdentity: make(map[string]*models.User),
	}
}

func (s *MemoryStore) Create(_ context.Context, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byIdentity[user.Identity]; ok {
		return false, nil
	}
	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.byID[u.ID] = &u
	s.byIdentity[u.Identity] = &u
	return true, nil
}

// Delete removes the user with the given id, if any.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.byID[id]; ok {
		delete(s.byIdentity, u.Identity)
		delete(s.byID, id)
	}
}

func (s *MemoryStore) FindByIdentity(_ context.Context, identity string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrNotFound(s.byIdentity[identity])
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyOrNotFound(s.byID[id])
}

func copyOrNotFound(u *models.User) (*models.User, error) {
	if u == nil {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}
