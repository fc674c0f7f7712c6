package cart

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store implementation. It backs unit tests and
// serves as a fallback when the server runs without a database-backed cart.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]LineItem
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]LineItem)}
}

// Load returns a copy of the session's items. Unknown sessions yield an empty
// cart.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]LineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[sessionID]
	out := make([]LineItem, len(items))
	copy(out, items)
	return out, nil
}

// Save replaces the session's items with a copy of the given list.
func (s *MemoryStore) Save(_ context.Context, sessionID string, items []LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]LineItem, len(items))
	copy(stored, items)
	s.carts[sessionID] = stored
	return nil
}
