// Package receipts keeps a local SQLite record of what this client has
// submitted, so applicants can find their tokens, commitments and escrowed
// references later.
package receipts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/dbx"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/hirectl/receipts/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Submission struct {
	TokenID    uint64
	AdvertID   int64
	Identifier string
	Commitment digest.Hash
	CreatedAt  time.Time
}

type Escrow struct {
	Commitment digest.Hash
	Ref        string
	Activation uint32
	CreatedAt  time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (or creates) the receipts database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) RecordSubmission(ctx context.Context, sub Submission) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO submissions (token_id, advert_id, identifier, commitment, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(token_id) DO UPDATE SET
				advert_id = excluded.advert_id,
				identifier = excluded.identifier,
				commitment = excluded.commitment`,
			sub.TokenID, sub.AdvertID, sub.Identifier, sub.Commitment.String(),
			s.now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("record submission %d: %w", sub.TokenID, err)
		}
		return nil
	})
}

func (s *Store) ForgetSubmission(ctx context.Context, tokenID uint64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE token_id = ?`, tokenID); err != nil {
		return fmt.Errorf("forget submission %d: %w", tokenID, err)
	}
	return nil
}

// RecordEscrow keeps the latest reference escrowed under a commitment,
// mirroring the server's overwrite semantics.
func (s *Store) RecordEscrow(ctx context.Context, e Escrow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO escrows (commitment, ref, activation, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(commitment) DO UPDATE SET
			ref = excluded.ref,
			activation = excluded.activation`,
		e.Commitment.String(), e.Ref, e.Activation, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record escrow: %w", err)
	}
	return nil
}

// EscrowFor returns the escrow recorded for commitment, or nil when none is known.
func (s *Store) EscrowFor(ctx context.Context, commitment digest.Hash) (*Escrow, error) {
	var (
		e       Escrow
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ref, activation, created_at FROM escrows WHERE commitment = ?`,
		commitment.String()).Scan(&e.Ref, &e.Activation, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("escrow for %s: %w", commitment, err)
	}
	e.Commitment = commitment
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &e, nil
}

func (s *Store) Escrows(ctx context.Context) ([]Escrow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT commitment, ref, activation, created_at FROM escrows ORDER BY created_at, commitment`)
	if err != nil {
		return nil, fmt.Errorf("list escrows: %w", err)
	}
	defer rows.Close()

	var out []Escrow
	for rows.Next() {
		var (
			e          Escrow
			commitment string
			created    string
		)
		if err := rows.Scan(&commitment, &e.Ref, &e.Activation, &created); err != nil {
			return nil, err
		}
		if e.Commitment, err = digest.Parse(commitment); err != nil {
			return nil, fmt.Errorf("escrow %s: %w", commitment, err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Submissions(ctx context.Context) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token_id, advert_id, identifier, commitment, created_at
		FROM submissions ORDER BY token_id`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var (
			sub        Submission
			commitment string
			created    string
		)
		if err := rows.Scan(&sub.TokenID, &sub.AdvertID, &sub.Identifier, &commitment, &created); err != nil {
			return nil, err
		}
		if sub.Commitment, err = digest.Parse(commitment); err != nil {
			return nil, fmt.Errorf("submission %d: %w", sub.TokenID, err)
		}
		sub.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, sub)
	}
	return out, rows.Err()
}
