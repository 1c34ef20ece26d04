// Package adverts stores job adverts.
package adverts

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

type Repository interface {
	// Create fails with ErrDuplicateAdvert or ErrDuplicateReferenceLink.
	Create(ctx context.Context, advert *models.Advert) error
	Get(ctx context.Context, id int64) (*models.Advert, error)
	ReferenceLinkExists(ctx context.Context, link string) (bool, error)
	// UpdateFlags persists SubmissionEnabled and Verified.
	UpdateFlags(ctx context.Context, advert *models.Advert) error
	Count(ctx context.Context) (int64, error)
}
