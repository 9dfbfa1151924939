package snapshot

import (
	"context"
	"sync"

	"github.com/ledgerline/ledgerline/internal/ledger"
)

type memoryStore struct {
	mu       sync.RWMutex
	archives map[string][]ledger.Snapshot
}

// NewMemoryStore creates an in-memory archive store for dev and tests.
func NewMemoryStore() Store {
	return &memoryStore{archives: make(map[string][]ledger.Snapshot)}
}

func (s *memoryStore) Save(_ context.Context, label string, rows []ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.archives[label]; exists {
		return ErrLabelExists
	}
	copied := make([]ledger.Snapshot, len(rows))
	copy(copied, rows)
	s.archives[label] = copied
	return nil
}

func (s *memoryStore) Load(_ context.Context, label string) ([]ledger.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.archives[label]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make([]ledger.Snapshot, len(rows))
	copy(copied, rows)
	return copied, nil
}
