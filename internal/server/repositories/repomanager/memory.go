package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/hireledger/internal/server/repositories/adverts"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/applications"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/escrow"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/scores"
)

// MemoryRepositoryManager keeps everything in process. Transactions run one
// at a time against the live maps; each write logs its inverse, and the logs
// are replayed when fn fails or panics.
type MemoryRepositoryManager struct {
	mu           sync.Mutex
	adverts      *adverts.MemoryRepository
	applications *applications.MemoryRepository
	escrow       *escrow.MemoryRepository
	scores       *scores.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		adverts:      adverts.NewMemoryRepository(),
		applications: applications.NewMemoryRepository(),
		escrow:       escrow.NewMemoryRepository(),
		scores:       scores.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	committed := false
	defer func() {
		if committed {
			return
		}
		m.adverts.Rollback()
		m.applications.Rollback()
		m.escrow.Rollback()
		m.scores.Rollback()
	}()

	if err := fn(ctx, Repos{Adverts: m.adverts, Applications: m.applications, Escrow: m.escrow, Scores: m.scores}); err != nil {
		return err
	}

	m.adverts.Commit()
	m.applications.Commit()
	m.escrow.Commit()
	m.scores.Commit()
	committed = true
	return nil
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Ping(context.Context) error          { return nil }
func (m *MemoryRepositoryManager) Close() error                        { return nil }
