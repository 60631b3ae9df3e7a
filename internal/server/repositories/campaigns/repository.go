// Package campaigns stores campaign submissions.
package campaigns

import (
	"context"

	"github.com/dmitrijs2005/didkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Campaign) error
	// ListByDID returns the DID's campaigns, oldest first.
	ListByDID(ctx context.Context, did string) ([]models.Campaign, error)
}
