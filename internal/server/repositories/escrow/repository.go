// Package escrow stores second-part escrow records keyed by commitment.
package escrow

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

type Repository interface {
	// Upsert stores rec, replacing any record under the same commitment.
	Upsert(ctx context.Context, rec *models.EscrowRecord) error
	// Get fails with ErrUnknownCommitment.
	Get(ctx context.Context, commitment digest.Hash) (*models.EscrowRecord, error)
}
