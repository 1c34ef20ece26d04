package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/kv"
	"github.com/dmitrijs2005/hireledger/internal/ledger"
	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/adverts"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/applications"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type published struct {
	Type signals.Type
	Data any
}

type recorder struct {
	mu   sync.Mutex
	sigs []published
}

func (r *recorder) Publish(_ context.Context, t signals.Type, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sigs = append(r.sigs, published{Type: t, Data: data})
}

func (r *recorder) ofType(t signals.Type) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, s := range r.sigs {
		if s.Type == t {
			out = append(out, s.Data)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sigs = nil
}

// stubRegistry overrides selected registry calls.
type stubRegistry struct {
	ledger.Registry
	verifiedHash func(ctx context.Context, tokenID uint64, candidate digest.Hash) (bool, error)
	exists       func(ctx context.Context, tokenID uint64) (bool, error)
}

func (s *stubRegistry) Exists(ctx context.Context, tokenID uint64) (bool, error) {
	if s.exists != nil {
		return s.exists(ctx, tokenID)
	}
	return s.Registry.Exists(ctx, tokenID)
}

func (s *stubRegistry) VerifiedHash(ctx context.Context, tokenID uint64, candidate digest.Hash) (bool, error) {
	if s.verifiedHash != nil {
		return s.verifiedHash(ctx, tokenID, candidate)
	}
	return s.Registry.VerifiedHash(ctx, tokenID, candidate)
}

type fixture struct {
	clock    *testClock
	signals  *recorder
	registry *stubRegistry
	repos    *repomanager.MemoryRepositoryManager
	deps     *Deps

	adverts      *AdvertService
	applications *ApplicationService
	escrow       *EscrowService
	scores       *ScoreService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := kv.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &testClock{t: day0}
	reg, err := ledger.NewBadgerRegistry(db, []byte("ledger-secret"), ledger.WithClock(clock.Now))
	require.NoError(t, err)

	f := &fixture{
		clock:    clock,
		signals:  &recorder{},
		registry: &stubRegistry{Registry: reg},
		repos:    repomanager.NewMemoryRepositoryManager(),
	}
	f.deps = &Deps{
		Repos:        f.repos,
		Registry:     f.registry,
		Signals:      f.signals,
		Now:          clock.Now,
		OwnerSubject: "acme",
	}
	f.adverts = NewAdvertService(f.deps)
	f.applications = NewApplicationService(f.deps)
	f.escrow = NewEscrowService(f.deps, nil)
	f.scores = NewScoreService(f.deps)
	return f
}

func as(subject string, role auth.Role) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{Subject: subject, Role: role})
}

var (
	ownerCtx  = as("acme", auth.RoleOwner)
	oracleCtx = as("oracle", auth.RoleOracle)
	aliceCtx  = as("alice", auth.RoleApplicant)
	bobCtx    = as("bob", auth.RoleApplicant)
	anonCtx   = context.Background()
)

func (f *fixture) mustAdvert(t *testing.T, id int64, link string) {
	t.Helper()
	_, err := f.adverts.CreateAdvert(ownerCtx, id, 30, link)
	require.NoError(t, err)
}

func (f *fixture) mustSubmit(t *testing.T, ctx context.Context, advertID int64, identifier string) *models.Submission {
	t.Helper()
	sub, err := f.applications.SubmitApplication(ctx, advertID, identifier)
	require.NoError(t, err)
	return sub
}

var errInjected = errors.New("injected failure")

// failingManager makes record creation fail inside otherwise normal
// transactions.
type failingManager struct {
	*repomanager.MemoryRepositoryManager
	failCreate bool
}

func (m *failingManager) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repos) error) error {
	return m.MemoryRepositoryManager.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		if m.failCreate {
			r.Adverts = failingAdverts{r.Adverts}
			r.Applications = failingApplications{r.Applications}
		}
		return fn(ctx, r)
	})
}

type failingAdverts struct{ adverts.Repository }

func (failingAdverts) Create(context.Context, *models.Advert) error { return errInjected }

type failingApplications struct{ applications.Repository }

func (failingApplications) Create(context.Context, *models.Application) error { return errInjected }

// conflictingManager aborts the first conflicts transactions after fn has
// run, the way Postgres rejects a serializable commit.
type conflictingManager struct {
	*repomanager.MemoryRepositoryManager
	conflicts int
	attempts  int
}

func (m *conflictingManager) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repos) error) error {
	m.attempts++
	return m.MemoryRepositoryManager.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		if err := fn(ctx, r); err != nil {
			return err
		}
		if m.attempts <= m.conflicts {
			return fmt.Errorf("commit: %w", common.ErrConflict)
		}
		return nil
	})
}

// trackingManager reports whether a transaction is open.
type trackingManager struct {
	*repomanager.MemoryRepositoryManager
	open atomic.Bool
}

func (m *trackingManager) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repos) error) error {
	return m.MemoryRepositoryManager.WithTx(ctx, func(ctx context.Context, r repomanager.Repos) error {
		m.open.Store(true)
		defer m.open.Store(false)
		return fn(ctx, r)
	})
}
