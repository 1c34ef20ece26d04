// Package services holds the hiring workflow: advert lifecycle, application
// registry, integrity verification, escrow vault and score ledger. Every
// public operation runs in one repository transaction and publishes its
// signals only after that transaction commits.
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/dbx"
	"github.com/dmitrijs2005/hireledger/internal/ledger"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
)

// Deps is what every service is built from.
type Deps struct {
	Repos    repomanager.RepositoryManager
	Registry ledger.Registry
	Signals  signals.Publisher
	Logger   logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// OwnerSubject owns advert tokens in the registry.
	OwnerSubject string
	// RequireAllVerified makes verification need every application to
	// match instead of at least one.
	RequireAllVerified bool
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *Deps) logger(module string) logging.Logger {
	if d.Logger == nil {
		return logging.Nop{}
	}
	return d.Logger.With("module", module)
}

type pendingSignal struct {
	t    signals.Type
	data any
}

// outbox collects signals raised inside a transaction, work that may only
// run once the transaction has committed, and compensations for side effects
// outside the store that must be undone if it does not.
type outbox struct {
	pending       []pendingSignal
	afterCommit   []func(ctx context.Context)
	afterRollback []func(ctx context.Context)
}

func (o *outbox) add(t signals.Type, data any) {
	o.pending = append(o.pending, pendingSignal{t: t, data: data})
}

func (o *outbox) onCommit(fn func(ctx context.Context)) {
	o.afterCommit = append(o.afterCommit, fn)
}

func (o *outbox) onRollback(fn func(ctx context.Context)) {
	o.afterRollback = append(o.afterRollback, fn)
}

// inTx runs fn in one transaction. Once it commits, the commit hooks run
// and then the raised signals are published, in order. An attempt the store
// aborts with common.ErrConflict is compensated and run again from scratch,
// up to dbx.DefaultAttempts times.
func (d *Deps) inTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repos, out *outbox) error) error {
	var out *outbox
	err := dbx.RetryConflicts(ctx, dbx.DefaultAttempts, func(ctx context.Context) error {
		out = &outbox{}
		err := d.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
			return fn(ctx, r, out)
		})
		if err != nil {
			for i := len(out.afterRollback) - 1; i >= 0; i-- {
				out.afterRollback[i](ctx)
			}
		}
		return err
	})
	if err != nil {
		return err
	}
	for _, fn := range out.afterCommit {
		fn(ctx)
	}
	if d.Signals != nil {
		for _, p := range out.pending {
			d.Signals.Publish(ctx, p.t, p.data)
		}
	}
	return nil
}

// requireLiveToken fails with common.ErrTokenNotFound unless tokenID is
// minted and not burned. Call it inside the transaction that reads the
// token's application so the two agree.
func (d *Deps) requireLiveToken(ctx context.Context, tokenID uint64) error {
	ok, err := d.Registry.Exists(ctx, tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrTokenNotFound
	}
	return nil
}

// burn retires a token minted by an operation that then failed.
func (d *Deps) burn(ctx context.Context, log logging.Logger, tokenID uint64) {
	if err := d.Registry.Burn(ctx, tokenID); err != nil {
		log.Error(ctx, "failed to burn token after rollback", "token_id", tokenID, "error", err)
	}
}
