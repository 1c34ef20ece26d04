package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContext(t *testing.T) {
	assert.Equal(t, Anonymous, PrincipalFrom(context.Background()))

	p := Principal{Subject: "alice", Role: RoleApplicant}
	ctx := WithPrincipal(context.Background(), p)
	assert.Equal(t, p, PrincipalFrom(ctx))
}

func TestPrincipal_Require(t *testing.T) {
	require.ErrorIs(t, Anonymous.Require(RoleOwner), common.ErrUnauthorized)

	oracle := Principal{Subject: "o", Role: RoleOracle}
	require.NoError(t, oracle.Require(RoleOracle))
	require.ErrorIs(t, oracle.Require(RoleOwner), common.ErrUnauthorized)
	require.NoError(t, oracle.Require(RoleOwner, RoleOracle, RoleApplicant))
}
