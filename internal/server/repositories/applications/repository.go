// Package applications stores submitted applications together with the
// per-identifier integrity records and the forwarded second-part mapping.
package applications

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

type Repository interface {
	// Create fails with ErrDuplicateSubmission when (advert, identifier)
	// already exists.
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, tokenID uint64) (*models.Application, error)
	Exists(ctx context.Context, advertID int64, identifier string) (bool, error)
	// IdentifierInUse reports whether any application still carries identifier.
	IdentifierInUse(ctx context.Context, identifier string) (bool, error)
	// ListByAdvert returns the advert's applications ordered by token id.
	ListByAdvert(ctx context.Context, advertID int64) ([]*models.Application, error)
	SetScore(ctx context.Context, tokenID uint64, score uint16) error
	Delete(ctx context.Context, tokenID uint64) error

	GetIntegrity(ctx context.Context, identifier string) (*models.IntegrityRecord, error)
	// PutIntegrityIfAbsent stores rec unless the identifier already has one,
	// and reports whether it was stored.
	PutIntegrityIfAbsent(ctx context.Context, rec *models.IntegrityRecord) (bool, error)
	DeleteIntegrity(ctx context.Context, identifier string) error

	// SetSecondPart records the second-part ref pulled for identifier.
	SetSecondPart(ctx context.Context, identifier, ref string) error
	// GetSecondPart returns "" when nothing was pulled yet.
	GetSecondPart(ctx context.Context, identifier string) (string, error)
	DeleteSecondPart(ctx context.Context, identifier string) error
}
