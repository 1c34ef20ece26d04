package adverts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/dbx"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

const referenceLinkConstraint = "adverts_reference_link_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Advert) error {
	query :=
		`INSERT INTO adverts (id, token_id, owner, deadline, reference_link, submission_enabled, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.TokenID, a.Owner, a.Deadline, a.ReferenceLink, a.SubmissionEnabled, a.Verified, a.CreatedAt)
	if err != nil {
		if constraint, ok := dbx.UniqueViolation(err); ok {
			if constraint == referenceLinkConstraint {
				return common.ErrDuplicateReferenceLink
			}
			return common.ErrDuplicateAdvert
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Advert, error) {
	query :=
		`SELECT id, token_id, owner, deadline, reference_link, submission_enabled, verified, created_at
		 FROM adverts
		 WHERE id = $1
		 `

	a := &models.Advert{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.TokenID, &a.Owner, &a.Deadline, &a.ReferenceLink, &a.SubmissionEnabled, &a.Verified, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAdvertNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) ReferenceLinkExists(ctx context.Context, link string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM adverts WHERE reference_link = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, link).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdateFlags(ctx context.Context, a *models.Advert) error {
	query :=
		`UPDATE adverts SET submission_enabled = $2, verified = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, a.ID, a.SubmissionEnabled, a.Verified)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrAdvertNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM adverts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
