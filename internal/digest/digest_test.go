package digest

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeccak256_KnownVector(t *testing.T) {
	// Keccak-256 of the empty string.
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256(nil).String())
	assert.NotEqual(t, Keccak256([]byte("cidA")), Keccak256([]byte("cidB")))
}

func TestParse(t *testing.T) {
	h := Keccak256([]byte("cidA"))

	got, err := Parse(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, got)

	got, err = Parse("0x" + h.String())
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = Parse("zz")
	require.ErrorIs(t, err, common.ErrInvalidHash)

	_, err = Parse("abcd")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestHash_JSONUsesHex(t *testing.T) {
	h := Keccak256([]byte("x"))
	b, err := json.Marshal(struct {
		C Hash `json:"c"`
	}{C: h})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"`+h.String()+`"}`, string(b))

	var back struct {
		C Hash `json:"c"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, h, back.C)
	assert.True(t, h.Equal(back.C))
	assert.False(t, h.IsZero())
	assert.True(t, Zero.IsZero())
}

func TestFromBytes(t *testing.T) {
	_, err := FromBytes([]byte{1, 2})
	require.ErrorIs(t, err, common.ErrInvalidHash)

	h := Keccak256([]byte("y"))
	got, err := FromBytes(h[:])
	require.NoError(t, err)
	assert.Equal(t, h, got)
}
