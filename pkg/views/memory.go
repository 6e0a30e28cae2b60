package views

import (
	"context"
	"sync"
	"time"
)

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithTTL sets how long saved views live. Zero means no expiration.
func WithTTL(ttl time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// MemoryStore is an in-process Store. It is the default for single-server
// deployments and for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memoryItem

	// now is swappable for expiry tests.
	now func() time.Time
}

type memoryItem struct {
	view      View
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory view store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a view, overwriting any existing view with the same ID.
func (s *MemoryStore) Save(_ context.Context, v View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{view: v}
	if s.ttl > 0 {
		item.expiresAt = s.now().Add(s.ttl)
	}
	s.items[v.ID] = item
	return nil
}

// Load retrieves a view by ID.
func (s *MemoryStore) Load(_ context.Context, id string) (View, error) {
	s.mu.RLock()
	item, ok := s.items[id]
	s.mu.RUnlock()

	if !ok || s.expired(item) {
		return View{}, ErrNotFound
	}
	return item.view, nil
}

// Delete removes a view; absent IDs are a no-op.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// List returns all unexpired views.
func (s *MemoryStore) List(_ context.Context) ([]View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]View, 0, len(s.items))
	for _, item := range s.items {
		if s.expired(item) {
			continue
		}
		out = append(out, item.view)
	}
	return out, nil
}

// Close drops all views.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]memoryItem)
	return nil
}

func (s *MemoryStore) expired(item memoryItem) bool {
	return !item.expiresAt.IsZero() && s.now().After(item.expiresAt)
}

var _ Store = (*MemoryStore)(nil)
