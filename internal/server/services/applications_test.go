package services

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitApplication(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")

	sub, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	app := sub.Application
	assert.Equal(t, int64(1), app.AdvertID)
	assert.Equal(t, "cidA", app.Identifier)
	assert.Equal(t, "alice", app.SubmittedBy)
	assert.Zero(t, app.Score)

	seal, err := f.registry.Seal(context.Background(), app.TokenID)
	require.NoError(t, err)
	assert.Equal(t, seal, sub.Commitment)

	captured, err := f.applications.CapturedHash(anonCtx, "cidA")
	require.NoError(t, err)
	assert.Equal(t, seal, captured)

	got, err := f.applications.GetApplication(ownerCtx, app.TokenID)
	require.NoError(t, err)
	assert.Equal(t, app, got)

	submitted := f.signals.ofType(signals.ApplicationSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, signals.ApplicationSubmittedData{
		AdvertID:    1,
		TokenID:     app.TokenID,
		Identifier:  "cidA",
		SubmittedBy: "alice",
	}, submitted[0])
}

func TestSubmitApplication_Rejections(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	_, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)

	tests := []struct {
		name   string
		ctx    context.Context
		advert int64
		id     string
		want   error
	}{
		{"anonymous", anonCtx, 1, "cidB", common.ErrUnauthorized},
		{"empty identifier", aliceCtx, 1, "", common.ErrValidation},
		{"unknown advert", aliceCtx, 7, "cidB", common.ErrAdvertNotFound},
		{"duplicate", bobCtx, 1, "cidA", common.ErrDuplicateSubmission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.applications.SubmitApplication(tt.ctx, tt.advert, tt.id)
			require.ErrorIs(t, err, tt.want)
		})
	}

	total, err := f.registry.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}

func TestSubmitApplication_SameIdentifierKeepsFirstHash(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	f.mustAdvert(t, 2, "ad2")

	first, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	second, err := f.applications.SubmitApplication(aliceCtx, 2, "cidA")
	require.NoError(t, err)

	assert.NotEqual(t, first.Application.TokenID, second.Application.TokenID)
	assert.Equal(t, first.Commitment, second.Commitment)

	secondSeal, err := f.registry.Seal(context.Background(), second.Application.TokenID)
	require.NoError(t, err)
	assert.NotEqual(t, secondSeal, second.Commitment)
}

func TestSubmitApplication_BurnsTokenWhenPersistFails(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	f.deps.Repos = &failingManager{MemoryRepositoryManager: f.repos, failCreate: true}

	_, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.ErrorIs(t, err, errInjected)

	total, err := f.registry.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total, "only the advert token remains")

	f.deps.Repos = f.repos
	_, err = f.applications.CapturedHash(anonCtx, "cidA")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSubmitApplication_RetriesConflicts(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	f.signals.reset()
	m := &conflictingManager{MemoryRepositoryManager: f.repos, conflicts: 1}
	f.deps.Repos = m

	sub, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	assert.Equal(t, 2, m.attempts)

	total, err := f.registry.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total, "advert token plus one application token")
	assert.Len(t, f.signals.ofType(signals.ApplicationSubmitted), 1)

	f.deps.Repos = f.repos
	got, err := f.applications.CapturedHash(anonCtx, "cidA")
	require.NoError(t, err)
	assert.Equal(t, sub.Commitment, got)
}

func TestSubmitApplication_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, common.ErrDuplicateSubmission):
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, dups)

	total, err := f.registry.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)
}

func TestGetApplication(t *testing.T) {
	f := newFixture(t)

	_, err := f.applications.GetApplication(aliceCtx, 1)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = f.applications.GetApplication(ownerCtx, 42)
	require.ErrorIs(t, err, common.ErrApplicationNotFound)
}

func TestRemoveApplication(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	sub, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	tokenID := sub.Application.TokenID

	require.NoError(t, f.scores.ApplyScoreToApplication(oracleCtx, tokenID, 50))
	require.NoError(t, f.repos.WithTx(context.Background(), func(ctx context.Context, r repomanager.Repos) error {
		return r.Applications.SetSecondPart(ctx, "cidA", "escrow/ref")
	}))

	err = f.applications.RemoveApplication(bobCtx, tokenID, "cidA")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	err = f.applications.RemoveApplication(aliceCtx, tokenID, "cidB")
	require.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, f.applications.RemoveApplication(aliceCtx, tokenID, "cidA"))

	ok, err := f.registry.Exists(context.Background(), tokenID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.applications.GetApplication(ownerCtx, tokenID)
	require.ErrorIs(t, err, common.ErrApplicationNotFound)
	_, err = f.applications.CapturedHash(anonCtx, "cidA")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, f.repos.WithTx(context.Background(), func(ctx context.Context, r repomanager.Repos) error {
		ref, err := r.Applications.GetSecondPart(ctx, "cidA")
		require.NoError(t, err)
		assert.Empty(t, ref)
		return nil
	}))

	removed := f.signals.ofType(signals.ApplicationRemoved)
	require.Len(t, removed, 1)
	assert.Equal(t, signals.ApplicationRemovedData{
		AdvertID:   1,
		TokenID:    tokenID,
		Identifier: "cidA",
		RemovedBy:  "alice",
	}, removed[0])

	err = f.applications.RemoveApplication(aliceCtx, tokenID, "cidA")
	require.ErrorIs(t, err, common.ErrTokenNotFound)

	// The identifier can be submitted afresh and captures a new hash.
	again, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	assert.NotEqual(t, sub.Commitment, again.Commitment)
}

func TestRemoveApplication_OwnerKeepsSharedIdentifier(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	f.mustAdvert(t, 2, "ad2")

	first, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	_, err = f.applications.SubmitApplication(aliceCtx, 2, "cidA")
	require.NoError(t, err)

	require.NoError(t, f.applications.RemoveApplication(ownerCtx, first.Application.TokenID, "cidA"))

	captured, err := f.applications.CapturedHash(anonCtx, "cidA")
	require.NoError(t, err)
	assert.Equal(t, first.Commitment, captured)
}

func TestRemoveApplication_UnknownToken(t *testing.T) {
	f := newFixture(t)

	err := f.applications.RemoveApplication(ownerCtx, 99, "cidA")
	require.ErrorIs(t, err, common.ErrTokenNotFound)
	require.ErrorIs(t, err, common.ErrorNotFound)

	err = f.applications.RemoveApplication(anonCtx, 99, "cidA")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestTokenChecksRunInsideTransaction(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	sub := f.mustSubmit(t, aliceCtx, 1, "cidA")
	tokenID := sub.Application.TokenID

	m := &trackingManager{MemoryRepositoryManager: f.repos}
	f.deps.Repos = m
	var checks, outside int
	f.registry.exists = func(ctx context.Context, id uint64) (bool, error) {
		checks++
		if !m.open.Load() {
			outside++
		}
		return f.registry.Registry.Exists(ctx, id)
	}

	require.NoError(t, f.scores.ApplyScoreToApplication(oracleCtx, tokenID, 70))
	require.NoError(t, f.applications.RemoveApplication(aliceCtx, tokenID, "cidA"))
	require.ErrorIs(t, f.scores.ApplyScoreToApplication(oracleCtx, tokenID, 80), common.ErrTokenNotFound)

	assert.Equal(t, 3, checks)
	assert.Zero(t, outside, "registry checked outside the transaction")
}

func TestRemoveApplication_BurnedTokenWithStaleRow(t *testing.T) {
	f := newFixture(t)
	f.mustAdvert(t, 1, "ad1")
	sub := f.mustSubmit(t, aliceCtx, 1, "cidA")
	tokenID := sub.Application.TokenID

	// the token is gone from the registry but its row is still there
	require.NoError(t, f.registry.Burn(context.Background(), tokenID))

	err := f.applications.RemoveApplication(aliceCtx, tokenID, "cidA")
	require.ErrorIs(t, err, common.ErrTokenNotFound)

	app, err := f.applications.GetApplication(ownerCtx, tokenID)
	require.NoError(t, err, "a rejected removal leaves the row alone")
	assert.Equal(t, "cidA", app.Identifier)
}
