package applications

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/undo"
)

type pairKey struct {
	advertID   int64
	identifier string
}

// MemoryRepository keeps applications in maps. Not safe for concurrent use;
// see adverts.MemoryRepository.
type MemoryRepository struct {
	byToken  map[uint64]models.Application
	byPair   map[pairKey]uint64
	byAdvert map[int64]map[uint64]struct{}
	// identifier -> number of adverts it is submitted to
	identifierRefs map[string]int
	integrity      map[string]models.IntegrityRecord
	secondParts    map[string]string
	log            undo.Log
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byToken:        make(map[uint64]models.Application),
		byPair:         make(map[pairKey]uint64),
		byAdvert:       make(map[int64]map[uint64]struct{}),
		identifierRefs: make(map[string]int),
		integrity:      make(map[string]models.IntegrityRecord),
		secondParts:    make(map[string]string),
	}
}

func (r *MemoryRepository) Commit()   { r.log.Commit() }
func (r *MemoryRepository) Rollback() { r.log.Rollback() }

func (r *MemoryRepository) Create(_ context.Context, app *models.Application) error {
	key := pairKey{app.AdvertID, app.Identifier}
	if _, ok := r.byPair[key]; ok {
		return common.ErrDuplicateSubmission
	}
	if _, ok := r.byToken[app.TokenID]; ok {
		return common.ErrDuplicateSubmission
	}
	undo.Set(&r.log, r.byToken, app.TokenID, *app)
	undo.Set(&r.log, r.byPair, key, app.TokenID)

	tokens, ok := r.byAdvert[app.AdvertID]
	if !ok {
		tokens = make(map[uint64]struct{})
		undo.Set(&r.log, r.byAdvert, app.AdvertID, tokens)
	}
	undo.Set(&r.log, tokens, app.TokenID, struct{}{})
	undo.Set(&r.log, r.identifierRefs, app.Identifier, r.identifierRefs[app.Identifier]+1)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, tokenID uint64) (*models.Application, error) {
	app, ok := r.byToken[tokenID]
	if !ok {
		return nil, common.ErrApplicationNotFound
	}
	return &app, nil
}

func (r *MemoryRepository) Exists(_ context.Context, advertID int64, identifier string) (bool, error) {
	_, ok := r.byPair[pairKey{advertID, identifier}]
	return ok, nil
}

func (r *MemoryRepository) IdentifierInUse(_ context.Context, identifier string) (bool, error) {
	return r.identifierRefs[identifier] > 0, nil
}

func (r *MemoryRepository) ListByAdvert(_ context.Context, advertID int64) ([]*models.Application, error) {
	tokens := r.byAdvert[advertID]
	if len(tokens) == 0 {
		return nil, nil
	}
	result := make([]*models.Application, 0, len(tokens))
	for tok := range tokens {
		app := r.byToken[tok]
		result = append(result, &app)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TokenID < result[j].TokenID })
	return result, nil
}

func (r *MemoryRepository) SetScore(_ context.Context, tokenID uint64, score uint16) error {
	app, ok := r.byToken[tokenID]
	if !ok {
		return common.ErrApplicationNotFound
	}
	app.Score = score
	undo.Set(&r.log, r.byToken, tokenID, app)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, tokenID uint64) error {
	app, ok := r.byToken[tokenID]
	if !ok {
		return common.ErrApplicationNotFound
	}
	undo.Delete(&r.log, r.byToken, tokenID)
	undo.Delete(&r.log, r.byPair, pairKey{app.AdvertID, app.Identifier})
	if tokens, ok := r.byAdvert[app.AdvertID]; ok {
		undo.Delete(&r.log, tokens, tokenID)
		if len(tokens) == 0 {
			undo.Delete(&r.log, r.byAdvert, app.AdvertID)
		}
	}
	if n := r.identifierRefs[app.Identifier]; n > 1 {
		undo.Set(&r.log, r.identifierRefs, app.Identifier, n-1)
	} else {
		undo.Delete(&r.log, r.identifierRefs, app.Identifier)
	}
	return nil
}

func (r *MemoryRepository) GetIntegrity(_ context.Context, identifier string) (*models.IntegrityRecord, error) {
	rec, ok := r.integrity[identifier]
	if !ok {
		return nil, fmt.Errorf("integrity record: %w", common.ErrorNotFound)
	}
	return &rec, nil
}

func (r *MemoryRepository) PutIntegrityIfAbsent(_ context.Context, rec *models.IntegrityRecord) (bool, error) {
	if _, ok := r.integrity[rec.Identifier]; ok {
		return false, nil
	}
	undo.Set(&r.log, r.integrity, rec.Identifier, *rec)
	return true, nil
}

func (r *MemoryRepository) DeleteIntegrity(_ context.Context, identifier string) error {
	undo.Delete(&r.log, r.integrity, identifier)
	return nil
}

func (r *MemoryRepository) SetSecondPart(_ context.Context, identifier, ref string) error {
	undo.Set(&r.log, r.secondParts, identifier, ref)
	return nil
}

func (r *MemoryRepository) GetSecondPart(_ context.Context, identifier string) (string, error) {
	return r.secondParts[identifier], nil
}

func (r *MemoryRepository) DeleteSecondPart(_ context.Context, identifier string) error {
	undo.Delete(&r.log, r.secondParts, identifier)
	return nil
}
