package match

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore builds an in-process like store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) CheckMutualLike(_ context.Context, a, b int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[PairKey(a, b)]
	return ok && rec.Liked, nil
}

func (s *memoryStore) RecordLike(_ context.Context, a, b int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[PairKey(a, b)] = Record{Liked: true}
	return nil
}
