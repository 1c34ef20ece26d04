package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := kv.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewJournal(db)
}

func TestJournal_AppendReplay(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	commitment := digest.Keccak256([]byte("cidA"))

	in := []Signal{
		{Type: AdvertCreated, Timestamp: at, Data: AdvertCreatedData{AdvertID: 1, TokenID: 1, ReferenceLink: "ad1", Deadline: at.Add(30 * 24 * time.Hour)}},
		{Type: SecondPartSubmitted, Timestamp: at, Data: SecondPartSubmittedData{Commitment: commitment, ActivationTime: at, ExpiryTime: at.Add(time.Hour)}},
		{Type: ShortlistComputed, Timestamp: at, Data: ShortlistComputedData{AdvertID: 1, Threshold: 80, TokenIDs: []uint64{2}}},
	}
	for i, sig := range in {
		seq, err := j.Append(sig)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq)
	}

	var out []Signal
	require.NoError(t, j.Replay(ctx, 0, func(sig Signal) error {
		out = append(out, sig)
		return nil
	}))
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, uint64(i+1), out[i].Seq)
		assert.Equal(t, in[i].Type, out[i].Type)
		assert.True(t, in[i].Timestamp.Equal(out[i].Timestamp))
	}
	assert.Equal(t, commitment, out[1].Data.(SecondPartSubmittedData).Commitment)
	assert.Equal(t, []uint64{2}, out[2].Data.(ShortlistComputedData).TokenIDs)

	var tail []uint64
	require.NoError(t, j.Replay(ctx, 2, func(sig Signal) error {
		tail = append(tail, sig.Seq)
		return nil
	}))
	assert.Equal(t, []uint64{3}, tail)
}

func TestJournal_ReplayStopsOnError(t *testing.T) {
	j := newTestJournal(t)
	for i := 0; i < 3; i++ {
		_, err := j.Append(Signal{Type: ScoreRecorded, Data: ScoreRecordedData{Kind: ScoreKindPair, Score: uint16(i)}})
		require.NoError(t, err)
	}

	stop := errors.New("stop")
	calls := 0
	err := j.Replay(context.Background(), 0, func(Signal) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestBus_JournalsBeforeDelivery(t *testing.T) {
	j := newTestJournal(t)
	bus := NewBus(nil, j, nil)
	_, ch := bus.Subscribe(ApplicationSubmitted)

	bus.Publish(context.Background(), ApplicationSubmitted, ApplicationSubmittedData{AdvertID: 1, TokenID: 2, Identifier: "cidA"})
	sig := <-ch
	assert.Equal(t, uint64(1), sig.Seq)

	var replayed []Signal
	require.NoError(t, j.Replay(context.Background(), 0, func(s Signal) error {
		replayed = append(replayed, s)
		return nil
	}))
	require.Len(t, replayed, 1)
	assert.Equal(t, "cidA", replayed[0].Data.(ApplicationSubmittedData).Identifier)
	bus.Stop()
}
