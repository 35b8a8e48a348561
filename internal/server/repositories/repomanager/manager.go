package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sobrerodas/internal/dbx"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/articles"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/sobrerodas/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	Articles(db dbx.DBTX) articles.Repository
}
