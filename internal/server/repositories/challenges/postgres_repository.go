package challenges

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/didkeeper/internal/common"
	"github.com/dmitrijs2005/didkeeper/internal/dbx"
	"github.com/dmitrijs2005/didkeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, c *models.Challenge) error {
	query := `
		INSERT INTO challenges (did, challenge, expires_at, used)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (did) DO UPDATE
		SET challenge = EXCLUDED.challenge, expires_at = EXCLUDED.expires_at, used = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, c.DID, c.Value, c.ExpiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, did, value string, now time.Time) error {
	query := `
		UPDATE challenges
		SET used = TRUE
		WHERE did = $1 AND challenge = $2 AND used = FALSE AND expires_at > $3
	`
	res, err := r.db.ExecContext(ctx, query, did, value, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM challenges
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
