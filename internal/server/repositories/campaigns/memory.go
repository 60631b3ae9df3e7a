package campaigns

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/didkeeper/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items []models.Campaign
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, c *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	stored.Payload = append([]byte(nil), c.Payload...)
	r.items = append(r.items, stored)
	return nil
}

func (r *MemoryRepository) ListByDID(_ context.Context, did string) ([]models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Campaign
	for _, c := range r.items {
		if c.DID == did {
			out = append(out, c)
		}
	}
	return out, nil
}
