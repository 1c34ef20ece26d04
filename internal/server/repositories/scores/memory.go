package scores

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/undo"
)

type pair struct{ a, b string }

type MemoryRepository struct {
	pairs       map[pair]uint16
	identifiers map[string]uint16
	// shortlists are replaced wholesale, never mutated in place
	shortlists map[int64]models.Shortlist
	log        undo.Log
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		pairs:       make(map[pair]uint16),
		identifiers: make(map[string]uint16),
		shortlists:  make(map[int64]models.Shortlist),
	}
}

func (r *MemoryRepository) Commit()   { r.log.Commit() }
func (r *MemoryRepository) Rollback() { r.log.Rollback() }

func (r *MemoryRepository) PutPair(_ context.Context, s models.PairScore) error {
	undo.Set(&r.log, r.pairs, pair{s.IdentifierA, s.IdentifierB}, s.Score)
	return nil
}

func (r *MemoryRepository) GetPair(_ context.Context, a, b string) (uint16, error) {
	return r.pairs[pair{a, b}], nil
}

func (r *MemoryRepository) PutIdentifierScore(_ context.Context, identifier string, score uint16) error {
	undo.Set(&r.log, r.identifiers, identifier, score)
	return nil
}

func (r *MemoryRepository) DeleteIdentifierScore(_ context.Context, identifier string) error {
	undo.Delete(&r.log, r.identifiers, identifier)
	return nil
}

func (r *MemoryRepository) SaveShortlist(_ context.Context, sl *models.Shortlist) error {
	stored := *sl
	stored.Entries = append([]models.ShortlistEntry{}, sl.Entries...)
	undo.Set(&r.log, r.shortlists, sl.AdvertID, stored)
	return nil
}

func (r *MemoryRepository) GetShortlist(_ context.Context, advertID int64) (*models.Shortlist, error) {
	sl, ok := r.shortlists[advertID]
	if !ok {
		return nil, nil
	}
	sl.Entries = append([]models.ShortlistEntry{}, sl.Entries...)
	return &sl, nil
}
