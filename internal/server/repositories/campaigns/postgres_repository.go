package campaigns

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/didkeeper/internal/dbx"
	"github.com/dmitrijs2005/didkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, did, transaction_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.DID, c.TransactionID, c.Payload, c.Status, c.CreatedAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByDID(ctx context.Context, did string) ([]models.Campaign, error) {
	query := `
		SELECT id, did, transaction_id, payload, status, created_at
		FROM campaigns
		WHERE did = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, did)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.DID, &c.TransactionID, &c.Payload, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
