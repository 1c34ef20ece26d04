// Package scores stores oracle scores and computed shortlists.
package scores

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

type Repository interface {
	// PutPair records the score for the ordered pair (a, b), overwriting.
	PutPair(ctx context.Context, score models.PairScore) error
	// GetPair returns 0 for a pair without a recorded score.
	GetPair(ctx context.Context, a, b string) (uint16, error)

	PutIdentifierScore(ctx context.Context, identifier string, score uint16) error
	DeleteIdentifierScore(ctx context.Context, identifier string) error

	// SaveShortlist replaces the advert's shortlist.
	SaveShortlist(ctx context.Context, sl *models.Shortlist) error
	// GetShortlist returns nil without error when none was computed.
	GetShortlist(ctx context.Context, advertID int64) (*models.Shortlist, error)
}
