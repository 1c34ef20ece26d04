// Package dbx runs repository work inside database/sql transactions and
// turns Postgres failures into the workflow's error kinds.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/sethvargo/go-retry"
)

// DBTX is what a repository needs from its handle. *sql.DB and *sql.Tx both
// satisfy it, so the same repository runs standalone or inside WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Serializable is the isolation used for lifecycle operations: each public
// operation reads and writes shared tables as if it ran alone.
var Serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// DefaultAttempts is how many times a lifecycle operation runs before a
// conflict is reported to the caller.
const DefaultAttempts = 3

// retryBackoff is the wait before the first rerun; it doubles after that.
var retryBackoff = 15 * time.Millisecond

// WithTx runs fn in a transaction opened with opts. It commits when fn
// returns nil and rolls back on error or panic; panics are re-raised.
// Serialization failures, whether raised by a statement in fn or by Commit,
// come back wrapping common.ErrConflict.
//
//	err := dbx.WithTx(ctx, db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE adverts SET ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		} else if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit: %w", err)
		}
		err = classify(err)
	}()

	return fn(ctx, tx)
}

func classify(err error) error {
	if err == nil || errors.Is(err, common.ErrConflict) || !SerializationFailure(err) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrConflict, err)
}

// RetryConflicts runs op until it returns anything but common.ErrConflict,
// at most attempts times, backing off exponentially between runs. If ctx
// ends first, its error is returned.
func RetryConflicts(ctx context.Context, attempts int, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := retry.WithMaxRetries(uint64(attempts-1), retry.WithJitterPercent(20, retry.NewExponential(retryBackoff)))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := op(ctx)
		if errors.Is(err, common.ErrConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}
