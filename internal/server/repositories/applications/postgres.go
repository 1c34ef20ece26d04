package applications

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

func (r *PostgresRepository) Create(ctx context.Context, app *models.Application) error {
	query :=
		`INSERT INTO applications (token_id, advert_id, identifier, score, submitted_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		app.TokenID, app.AdvertID, app.Identifier, app.Score, app.SubmittedBy, app.CreatedAt)
	if err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return common.ErrDuplicateSubmission
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, tokenID uint64) (*models.Application, error) {
	query :=
		`SELECT token_id, advert_id, identifier, score, submitted_by, created_at
		 FROM applications
		 WHERE token_id = $1
		 `

	app := &models.Application{}
	err := r.db.QueryRowContext(ctx, query, tokenID).Scan(
		&app.TokenID, &app.AdvertID, &app.Identifier, &app.Score, &app.SubmittedBy, &app.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return app, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, advertID int64, identifier string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM applications WHERE advert_id = $1 AND identifier = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, advertID, identifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) IdentifierInUse(ctx context.Context, identifier string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM applications WHERE identifier = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, identifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByAdvert(ctx context.Context, advertID int64) ([]*models.Application, error) {
	query :=
		`SELECT token_id, advert_id, identifier, score, submitted_by, created_at
		 FROM applications
		 WHERE advert_id = $1
		 ORDER BY token_id
		 `

	rows, err := r.db.QueryContext(ctx, query, advertID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Application
	for rows.Next() {
		app := &models.Application{}
		if err := rows.Scan(&app.TokenID, &app.AdvertID, &app.Identifier, &app.Score, &app.SubmittedBy, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetScore(ctx context.Context, tokenID uint64, score uint16) error {
	return r.execOne(ctx, `UPDATE applications SET score = $2 WHERE token_id = $1`, tokenID, score)
}

func (r *PostgresRepository) Delete(ctx context.Context, tokenID uint64) error {
	return r.execOne(ctx, `DELETE FROM applications WHERE token_id = $1`, tokenID)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrApplicationNotFound
	}
	return nil
}

func (r *PostgresRepository) GetIntegrity(ctx context.Context, identifier string) (*models.IntegrityRecord, error) {
	query := `SELECT hash FROM integrity_records WHERE identifier = $1`

	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, identifier).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("integrity record: %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	h, err := digest.FromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("integrity record %q: %w", identifier, err)
	}
	return &models.IntegrityRecord{Identifier: identifier, Hash: h}, nil
}

func (r *PostgresRepository) PutIntegrityIfAbsent(ctx context.Context, rec *models.IntegrityRecord) (bool, error) {
	query :=
		`INSERT INTO integrity_records (identifier, hash)
		 VALUES ($1, $2)
		 ON CONFLICT (identifier) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, rec.Identifier, rec.Hash[:])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) DeleteIntegrity(ctx context.Context, identifier string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM integrity_records WHERE identifier = $1`, identifier); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetSecondPart(ctx context.Context, identifier, ref string) error {
	query :=
		`INSERT INTO second_parts (identifier, ciphertext_ref)
		 VALUES ($1, $2)
		 ON CONFLICT (identifier) DO UPDATE SET ciphertext_ref = EXCLUDED.ciphertext_ref
		 `

	if _, err := r.db.ExecContext(ctx, query, identifier, ref); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetSecondPart(ctx context.Context, identifier string) (string, error) {
	var ref string
	err := r.db.QueryRowContext(ctx, `SELECT ciphertext_ref FROM second_parts WHERE identifier = $1`, identifier).Scan(&ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return ref, nil
}

func (r *PostgresRepository) DeleteSecondPart(ctx context.Context, identifier string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM second_parts WHERE identifier = $1`, identifier); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
