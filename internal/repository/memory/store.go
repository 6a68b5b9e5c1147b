package memory

import (
	"context"
	"sync"

	"github.com/Rrens/vibe-app-store/internal/domain"
)

// Store is a process-local KV store. State is lost on restart.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = clone(value)
	return nil
}

func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = clone(value)
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
