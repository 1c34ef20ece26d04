package adverts

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/undo"
)

// MemoryRepository keeps adverts in maps. It is not safe for concurrent use;
// the memory repository manager serializes access and calls Commit or
// Rollback when a transaction ends.
type MemoryRepository struct {
	byID   map[int64]models.Advert
	byLink map[string]int64
	log    undo.Log
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[int64]models.Advert),
		byLink: make(map[string]int64),
	}
}

// Commit keeps every write since the last Commit or Rollback.
func (r *MemoryRepository) Commit() { r.log.Commit() }

// Rollback undoes every write since the last Commit or Rollback.
func (r *MemoryRepository) Rollback() { r.log.Rollback() }

func (r *MemoryRepository) Create(_ context.Context, a *models.Advert) error {
	if _, ok := r.byID[a.ID]; ok {
		return common.ErrDuplicateAdvert
	}
	if _, ok := r.byLink[a.ReferenceLink]; ok {
		return common.ErrDuplicateReferenceLink
	}
	undo.Set(&r.log, r.byID, a.ID, *a)
	undo.Set(&r.log, r.byLink, a.ReferenceLink, a.ID)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*models.Advert, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrAdvertNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) ReferenceLinkExists(_ context.Context, link string) (bool, error) {
	_, ok := r.byLink[link]
	return ok, nil
}

func (r *MemoryRepository) UpdateFlags(_ context.Context, a *models.Advert) error {
	stored, ok := r.byID[a.ID]
	if !ok {
		return common.ErrAdvertNotFound
	}
	stored.SubmissionEnabled = a.SubmissionEnabled
	stored.Verified = a.Verified
	undo.Set(&r.log, r.byID, a.ID, stored)
	return nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}
