package storage

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/dmitrijs2005/didkeeper/internal/common"
)

// MemoryStorage keeps values in a map. It is used in tests and by callers
// that do not need anything persisted across runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	data    map[string]string
	failure error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// FailWith makes every following operation fail with err wrapped in
// common.ErrStorageUnavailable. A nil err restores normal operation.
func (s *MemoryStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// Snapshot returns a copy of the stored values.
func (s *MemoryStorage) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

func (s *MemoryStorage) check() error {
	if s.failure != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, s.failure)
	}
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return "", false, err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStorage) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *MemoryStorage) Update(ctx context.Context, set map[string]string, remove []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	for _, k := range remove {
		delete(s.data, k)
	}
	for k, v := range set {
		s.data[k] = v
	}
	return nil
}
