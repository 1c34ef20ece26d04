package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dmitrijs2005/hireledger/internal/codec"
	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/logging"
)

const (
	tokenPrefix = "tok/"
	seqKey      = "meta/seq"
	countKey    = "meta/count"
	nonceSize   = 16
)

var ErrInvalidMint = fmt.Errorf("%w: owner and content ref are required", common.ErrValidation)

// tokenRecord is the stored form of a token.
type tokenRecord struct {
	ID          uint64      `cbor:"id"`
	Seq         uint64      `cbor:"seq"`
	Owner       string      `cbor:"owner"`
	ContentRef  string      `cbor:"ref"`
	ContentHash digest.Hash `cbor:"ch"`
	Seal        digest.Hash `cbor:"seal"`
	Attestation string      `cbor:"att"`
	MintedAt    time.Time   `cbor:"at"`
}

// BadgerRegistry is a Registry stored in badger.
type BadgerRegistry struct {
	db     *badger.DB
	secret []byte
	now    func() time.Time
	logger logging.Logger

	// serializes writers so the sequence counter never conflicts
	mu sync.Mutex
}

type Option func(*BadgerRegistry)

func WithClock(now func() time.Time) Option {
	return func(r *BadgerRegistry) { r.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(r *BadgerRegistry) { r.logger = l }
}

// NewBadgerRegistry builds a registry on db. secret signs the per-token
// attestations and must stay the same across restarts.
func NewBadgerRegistry(db *badger.DB, secret []byte, opts ...Option) (*BadgerRegistry, error) {
	if len(secret) == 0 {
		return nil, errors.New("ledger secret is empty")
	}
	r := &BadgerRegistry{
		db:     db,
		secret: secret,
		now:    time.Now,
		logger: logging.Nop{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("module", "ledger")
	return r, nil
}

func tokenKey(id uint64) []byte {
	key := make([]byte, len(tokenPrefix)+8)
	copy(key, tokenPrefix)
	binary.BigEndian.PutUint64(key[len(tokenPrefix):], id)
	return key
}

func readUint(txn *badger.Txn, key string) (uint64, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt counter %q", key)
		}
		v = binary.BigEndian.Uint64(val)
		return nil
	})
	return v, err
}

func writeUint(txn *badger.Txn, key string, v uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return txn.Set([]byte(key), buf)
}

func loadRecord(txn *badger.Txn, id uint64) (*tokenRecord, error) {
	item, err := txn.Get(tokenKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, common.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := &tokenRecord{}
	if err := item.Value(func(val []byte) error {
		return codec.Unmarshal(val, rec)
	}); err != nil {
		return nil, fmt.Errorf("decode token %d: %w", id, err)
	}
	return rec, nil
}

func (r *BadgerRegistry) Mint(ctx context.Context, owner, contentRef string) (uint64, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(contentRef) == "" {
		return 0, ErrInvalidMint
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var id uint64
	err := r.db.Update(func(txn *badger.Txn) error {
		seq, err := readUint(txn, seqKey)
		if err != nil {
			return err
		}
		count, err := readUint(txn, countKey)
		if err != nil {
			return err
		}
		seq++

		rec := &tokenRecord{
			ID:          seq,
			Seq:         seq,
			Owner:       owner,
			ContentRef:  contentRef,
			ContentHash: r.ContentHash(contentRef),
			MintedAt:    r.now().UTC(),
		}
		nonce := common.GenerateRandByteArray(nonceSize)
		rec.Seal, err = computeSeal(sealPayload{
			Seq:         rec.Seq,
			TokenID:     rec.ID,
			Owner:       rec.Owner,
			ContentHash: rec.ContentHash,
			MintedAt:    rec.MintedAt,
			Nonce:       nonce,
		})
		common.WipeByteArray(nonce)
		if err != nil {
			return err
		}
		if rec.Attestation, err = signAttestation(rec, r.secret); err != nil {
			return fmt.Errorf("sign attestation: %w", err)
		}

		b, err := codec.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode token: %w", err)
		}
		if err := txn.Set(tokenKey(rec.ID), b); err != nil {
			return err
		}
		if err := writeUint(txn, seqKey, seq); err != nil {
			return err
		}
		if err := writeUint(txn, countKey, count+1); err != nil {
			return err
		}
		id = rec.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mint: %w", err)
	}
	r.logger.Debug(ctx, "token minted", "token_id", id, "owner", owner)
	return id, nil
}

func (r *BadgerRegistry) Burn(ctx context.Context, tokenID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := loadRecord(txn, tokenID); err != nil {
			return err
		}
		count, err := readUint(txn, countKey)
		if err != nil {
			return err
		}
		if err := txn.Delete(tokenKey(tokenID)); err != nil {
			return err
		}
		if count > 0 {
			count--
		}
		return writeUint(txn, countKey, count)
	})
	if err != nil {
		return fmt.Errorf("burn %d: %w", tokenID, err)
	}
	r.logger.Debug(ctx, "token burned", "token_id", tokenID)
	return nil
}

func (r *BadgerRegistry) Exists(_ context.Context, tokenID uint64) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(tokenKey(tokenID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *BadgerRegistry) TotalCount(_ context.Context) (uint64, error) {
	var n uint64
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readUint(txn, countKey)
		return err
	})
	return n, err
}

func (r *BadgerRegistry) IDAt(_ context.Context, index uint64) (uint64, error) {
	var (
		id    uint64
		found bool
	)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(tokenPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		var i uint64
		for it.Rewind(); it.Valid(); it.Next() {
			if i == index {
				key := it.Item().Key()
				id = binary.BigEndian.Uint64(key[len(tokenPrefix):])
				found = true
				return nil
			}
			i++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("index %d: %w", index, common.ErrTokenNotFound)
	}
	return id, nil
}

func (r *BadgerRegistry) ContentHash(contentRef string) digest.Hash {
	return digest.Keccak256([]byte(contentRef))
}

func (r *BadgerRegistry) VerifiedHash(ctx context.Context, tokenID uint64, candidate digest.Hash) (bool, error) {
	rec, err := r.load(tokenID)
	if err != nil {
		return false, err
	}
	if err := checkAttestation(rec, r.secret); err != nil {
		r.logger.Warn(ctx, "token record failed attestation", "token_id", tokenID, "error", err)
		return false, nil
	}
	return rec.ContentHash.Equal(candidate), nil
}

func (r *BadgerRegistry) Seal(ctx context.Context, tokenID uint64) (digest.Hash, error) {
	rec, err := r.load(tokenID)
	if err != nil {
		return digest.Zero, err
	}
	if err := checkAttestation(rec, r.secret); err != nil {
		r.logger.Warn(ctx, "token record failed attestation", "token_id", tokenID, "error", err)
		return digest.Zero, fmt.Errorf("seal %d: %w", tokenID, common.ErrInvalidToken)
	}
	return rec.Seal, nil
}

func (r *BadgerRegistry) load(tokenID uint64) (*tokenRecord, error) {
	var rec *tokenRecord
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = loadRecord(txn, tokenID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("token %d: %w", tokenID, err)
	}
	return rec, nil
}
