package memory

import (
	"context"
	"sync"

	"github.com/aretw0/broilr/pkg/domain"
)

// IdentityStore implements ports.IdentityStore in memory.
// Safe for concurrent use. Nothing survives a restart.
type IdentityStore struct {
	mu       sync.RWMutex
	username string
}

// NewIdentityStore creates an empty identity store.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{}
}

// Load returns the stored username.
func (s *IdentityStore) Load(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.username == "" {
		return "", domain.ErrNotLoggedIn
	}
	return s.username, nil
}

// Save stores the username.
func (s *IdentityStore) Save(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	return nil
}

// Clear forgets the username.
func (s *IdentityStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = ""
	return nil
}
