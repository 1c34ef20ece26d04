package services

import (
	"testing"

	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHiringScenario(t *testing.T) {
	f := newFixture(t)

	advert, err := f.adverts.CreateAdvert(ownerCtx, 1, 30, "ad1")
	require.NoError(t, err)
	require.True(t, advert.SubmissionEnabled)

	sub, err := f.applications.SubmitApplication(aliceCtx, 1, "cidA")
	require.NoError(t, err)
	tokenID := sub.Application.TokenID

	advert, _, err = f.adverts.CloseSubmission(ownerCtx, 1)
	require.NoError(t, err)
	require.True(t, advert.Verified)

	_, err = f.escrow.SubmitSecondPart(aliceCtx, sub.Commitment, "escrow/cidA-part2", today)
	require.NoError(t, err)

	refs, err := f.escrow.GetAllSecondParts(ownerCtx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"cidA": "escrow/cidA-part2"}, refs)

	require.NoError(t, f.scores.ApplyScoreToApplication(oracleCtx, tokenID, 85))

	sl, err := f.adverts.ComputeTopApplications(ownerCtx, 1, 80)
	require.NoError(t, err)
	assert.Equal(t, []models.ShortlistEntry{{TokenID: tokenID, Score: 85}}, sl.Entries)

	sl, err = f.adverts.ComputeTopApplications(ownerCtx, 1, 90)
	require.NoError(t, err)
	assert.Empty(t, sl.Entries)
}
