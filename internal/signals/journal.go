package signals

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/hireledger/internal/codec"
	"github.com/fxamacker/cbor/v2"
)

const (
	journalPrefix = "sig/"
	journalSeqKey = "meta/sigseq"
)

type journalEntry struct {
	Seq       uint64          `cbor:"seq"`
	Type      Type            `cbor:"type"`
	Timestamp time.Time       `cbor:"at"`
	Data      cbor.RawMessage `cbor:"data"`
}

// Journal is the append-only audit log of published signals. Entries are
// keyed by a monotonically increasing sequence and never deleted.
type Journal struct {
	db *badger.DB
	mu sync.Mutex
}

func NewJournal(db *badger.DB) *Journal {
	return &Journal{db: db}
}

func journalKey(seq uint64) []byte {
	key := make([]byte, len(journalPrefix)+8)
	copy(key, journalPrefix)
	binary.BigEndian.PutUint64(key[len(journalPrefix):], seq)
	return key
}

// Append stores sig and returns the sequence it was assigned.
func (j *Journal) Append(sig Signal) (uint64, error) {
	data, err := codec.Marshal(sig.Data)
	if err != nil {
		return 0, fmt.Errorf("encode %s payload: %w", sig.Type, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var seq uint64
	err = j.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(journalSeqKey))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				seq = binary.BigEndian.Uint64(val)
				return nil
			}); err != nil {
				return err
			}
		}
		seq++

		b, err := codec.Marshal(journalEntry{
			Seq:       seq,
			Type:      sig.Type,
			Timestamp: sig.Timestamp,
			Data:      data,
		})
		if err != nil {
			return err
		}
		if err := txn.Set(journalKey(seq), b); err != nil {
			return err
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, seq)
		return txn.Set([]byte(journalSeqKey), buf)
	})
	if err != nil {
		return 0, fmt.Errorf("journal append: %w", err)
	}
	return seq, nil
}

// Replay calls fn for every journaled signal with Seq > after, in order.
// Iteration stops at the first error fn returns.
func (j *Journal) Replay(ctx context.Context, after uint64, fn func(Signal) error) error {
	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(journalPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(journalKey(after + 1)); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e journalEntry
			if err := it.Item().Value(func(val []byte) error {
				return codec.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode journal entry: %w", err)
			}
			data, err := decodeData(e.Type, e.Data)
			if err != nil {
				return err
			}
			if err := fn(Signal{Seq: e.Seq, Type: e.Type, Timestamp: e.Timestamp, Data: data}); err != nil {
				return err
			}
		}
		return nil
	})
}
