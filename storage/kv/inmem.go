package kv

import (
	"context"
	"sync"
	"time"
)

// InmemStore is the process-local fallback used in tests and mock mode.
type InmemStore struct {
	mutex   sync.RWMutex
	entries map[string]entry
}

var _ Store = (*InmemStore)(nil)

func NewInmemStore() *InmemStore {
	return &InmemStore{entries: make(map[string]entry)}
}

func (s *InmemStore) Get(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return e.Data, nil
}

func (s *InmemStore) Set(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries[key] = entry{Data: value, Timestamp: time.Now().UTC()}
	return nil
}

func (s *InmemStore) Remove(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *InmemStore) IsCacheValid(ctx context.Context, key string, ttl time.Duration) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	return time.Since(e.Timestamp) < ttl
}
