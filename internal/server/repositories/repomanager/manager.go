// Package repomanager hands out repositories bound to a database handle and
// runs the schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/didkeeper/internal/dbx"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/campaigns"
	"github.com/dmitrijs2005/didkeeper/internal/server/repositories/challenges"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Challenges(db dbx.DBTX) challenges.Repository
	Campaigns(db dbx.DBTX) campaigns.Repository
}
