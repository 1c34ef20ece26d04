package escrow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/dbx"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.EscrowRecord) error {
	query :=
		`INSERT INTO escrow_records (commitment, ciphertext_ref, activation_time, expiry_time, submitted_by)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (commitment) DO UPDATE SET
		     ciphertext_ref = EXCLUDED.ciphertext_ref,
		     activation_time = EXCLUDED.activation_time,
		     expiry_time = EXCLUDED.expiry_time,
		     submitted_by = EXCLUDED.submitted_by
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.Commitment[:], rec.CiphertextRef, rec.ActivationTime, rec.ExpiryTime, rec.SubmittedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, commitment digest.Hash) (*models.EscrowRecord, error) {
	query :=
		`SELECT commitment, ciphertext_ref, activation_time, expiry_time, submitted_by
		 FROM escrow_records
		 WHERE commitment = $1
		 `

	var raw []byte
	rec := &models.EscrowRecord{}
	err := r.db.QueryRowContext(ctx, query, commitment[:]).Scan(
		&raw, &rec.CiphertextRef, &rec.ActivationTime, &rec.ExpiryTime, &rec.SubmittedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUnknownCommitment
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	stored, err := digest.FromBytes(raw)
	if err != nil || !stored.Equal(commitment) {
		return nil, common.ErrUnknownCommitment
	}
	rec.Commitment = stored
	return rec, nil
}
