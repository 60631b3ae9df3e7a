// Package challenges stores the login challenges handed out to DIDs.
package challenges

import (
	"context"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/server/models"
)

// Repository keeps at most one challenge per DID.
type Repository interface {
	// Save stores c as the only challenge of c.DID, replacing an earlier one.
	Save(ctx context.Context, c *models.Challenge) error

	// Consume marks the DID's challenge as used if it equals value, is unused
	// and has not expired at now. The check and the update are one atomic
	// step; every other outcome returns common.ErrNotFound.
	Consume(ctx context.Context, did, value string, now time.Time) error

	// DeleteExpired removes challenges that expired at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
