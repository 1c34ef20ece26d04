package escrow

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/undo"
)

type MemoryRepository struct {
	records map[digest.Hash]models.EscrowRecord
	log     undo.Log
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[digest.Hash]models.EscrowRecord)}
}

func (r *MemoryRepository) Commit()   { r.log.Commit() }
func (r *MemoryRepository) Rollback() { r.log.Rollback() }

func (r *MemoryRepository) Upsert(_ context.Context, rec *models.EscrowRecord) error {
	undo.Set(&r.log, r.records, rec.Commitment, *rec)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, commitment digest.Hash) (*models.EscrowRecord, error) {
	rec, ok := r.records[commitment]
	if !ok {
		return nil, common.ErrUnknownCommitment
	}
	return &rec, nil
}
