package challenges

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/server/models"
)

// MemoryRepository is the Repository used when no database is configured.
type MemoryRepository struct {
	mu    sync.Mutex
	byDID map[string]models.Challenge
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byDID: make(map[string]models.Challenge)}
}

func (r *MemoryRepository) Save(_ context.Context, c *models.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	stored.Used = false
	r.byDID[c.DID] = stored
	return nil
}

func (r *MemoryRepository) Consume(_ context.Context, did, value string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byDID[did]
	if !ok || c.Used {
		return common.ErrNotFound
	}
	if !now.Before(c.ExpiresAt) {
		delete(r.byDID, did)
		return common.ErrNotFound
	}
	if subtle.ConstantTimeCompare([]byte(c.Value), []byte(value)) != 1 {
		return common.ErrNotFound
	}

	c.Used = true
	r.byDID[did] = c
	return nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for did, c := range r.byDID {
		if !c.ExpiresAt.After(now) {
			delete(r.byDID, did)
			n++
		}
	}
	return n, nil
}
