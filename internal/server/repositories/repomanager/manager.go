package repomanager

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/server/repositories/adverts"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/applications"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/escrow"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/scores"
)

// Repos is the set of repositories bound to one transaction.
type Repos struct {
	Adverts      adverts.Repository
	Applications applications.Repository
	Escrow       escrow.Repository
	Scores       scores.Repository
}

// RepositoryManager runs units of work atomically: either every write made
// through the Repos passed to fn is kept, or none is.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	Ping(ctx context.Context) error
	Close() error
}
