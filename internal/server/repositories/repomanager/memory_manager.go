package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/didkeeper/internal/dbx"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/campaigns"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/challenges"
)

// InMemoryRepositoryManager ignores the database handle and serves shared
// in-process repositories. Used when no DSN is configured and in tests.
type InMemoryRepositoryManager struct {
	challenges *challenges.MemoryRepository
	campaigns  *campaigns.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		challenges: challenges.NewMemoryRepository(),
		campaigns:  campaigns.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Challenges(dbx.DBTX) challenges.Repository {
	return m.challenges
}

func (m *InMemoryRepositoryManager) Campaigns(dbx.DBTX) campaigns.Repository {
	return m.campaigns
}
