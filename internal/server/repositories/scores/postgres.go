package scores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/dbx"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) PutPair(ctx context.Context, s models.PairScore) error {
	query :=
		`INSERT INTO pair_scores (identifier_a, identifier_b, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (identifier_a, identifier_b) DO UPDATE SET score = EXCLUDED.score
		 `

	if _, err := r.db.ExecContext(ctx, query, s.IdentifierA, s.IdentifierB, s.Score); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetPair(ctx context.Context, a, b string) (uint16, error) {
	query := `SELECT score FROM pair_scores WHERE identifier_a = $1 AND identifier_b = $2`

	var score uint16
	if err := r.db.QueryRowContext(ctx, query, a, b).Scan(&score); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return score, nil
}

func (r *PostgresRepository) PutIdentifierScore(ctx context.Context, identifier string, score uint16) error {
	query :=
		`INSERT INTO identifier_scores (identifier, score)
		 VALUES ($1, $2)
		 ON CONFLICT (identifier) DO UPDATE SET score = EXCLUDED.score
		 `

	if _, err := r.db.ExecContext(ctx, query, identifier, score); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteIdentifierScore(ctx context.Context, identifier string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM identifier_scores WHERE identifier = $1`, identifier); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveShortlist(ctx context.Context, sl *models.Shortlist) error {
	upsert :=
		`INSERT INTO shortlists (advert_id, threshold, computed_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (advert_id) DO UPDATE SET threshold = EXCLUDED.threshold, computed_at = EXCLUDED.computed_at
		 `
	if _, err := r.db.ExecContext(ctx, upsert, sl.AdvertID, sl.Threshold, sl.ComputedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shortlist_entries WHERE advert_id = $1`, sl.AdvertID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	insert :=
		`INSERT INTO shortlist_entries (advert_id, position, token_id, score)
		 VALUES ($1, $2, $3, $4)
		 `
	for i, e := range sl.Entries {
		if _, err := r.db.ExecContext(ctx, insert, sl.AdvertID, i, e.TokenID, e.Score); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetShortlist(ctx context.Context, advertID int64) (*models.Shortlist, error) {
	sl := &models.Shortlist{AdvertID: advertID}
	err := r.db.QueryRowContext(ctx,
		`SELECT threshold, computed_at FROM shortlists WHERE advert_id = $1`, advertID).
		Scan(&sl.Threshold, &sl.ComputedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT token_id, score FROM shortlist_entries WHERE advert_id = $1 ORDER BY position`, advertID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	sl.Entries = []models.ShortlistEntry{}
	for rows.Next() {
		var e models.ShortlistEntry
		if err := rows.Scan(&e.TokenID, &e.Score); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		sl.Entries = append(sl.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return sl, nil
}
