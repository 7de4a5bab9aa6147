package repomanager

import (
	"context"
	"database/sql"

	"github.com/Renkon/StoreAPI/internal/dbx"
	"github.com/Renkon/StoreAPI/internal/server/repositories/purchases"
	"github.com/Renkon/StoreAPI/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX. Services re-bind
// repositories to the transactional handle inside a dbx.WithTx scope.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Purchases(db dbx.DBTX) purchases.Repository
}
