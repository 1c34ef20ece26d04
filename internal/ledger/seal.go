package ledger

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/codec"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zeebo/blake3"
)

// sealDomainKey keys the BLAKE3 hash so seals never collide with hashes
// computed elsewhere over the same bytes.
var sealDomainKey = [32]byte{
	'h', 'i', 'r', 'e', 'l', 'e', 'd', 'g', 'e', 'r', '.', 'l', 'e', 'd', 'g', 'e',
	'r', '.', 's', 'e', 'a', 'l', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// sealPayload is everything that goes into a seal. The nonce makes the seal
// unpredictable before mint even when the other fields are known.
type sealPayload struct {
	Seq         uint64      `cbor:"seq"`
	TokenID     uint64      `cbor:"tok"`
	Owner       string      `cbor:"own"`
	ContentHash digest.Hash `cbor:"ch"`
	MintedAt    time.Time   `cbor:"at"`
	Nonce       []byte      `cbor:"n"`
}

func computeSeal(p sealPayload) (digest.Hash, error) {
	b, err := codec.Marshal(p)
	if err != nil {
		return digest.Hash{}, fmt.Errorf("encode seal payload: %w", err)
	}
	hasher, err := blake3.NewKeyed(sealDomainKey[:])
	if err != nil {
		panic("ledger: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(b)
	var out digest.Hash
	copy(out[:], hasher.Sum(nil))
	return out, nil
}

// attestationClaims bind a token's identity, content hash and seal under the
// registry secret. Subject is the owner, ID the token id.
type attestationClaims struct {
	jwt.RegisteredClaims
	Seq         uint64 `json:"seq"`
	ContentHash string `json:"ch"`
	Seal        string `json:"seal"`
}

func signAttestation(rec *tokenRecord, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, attestationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       strconv.FormatUint(rec.ID, 10),
			Subject:  rec.Owner,
			IssuedAt: jwt.NewNumericDate(rec.MintedAt),
		},
		Seq:         rec.Seq,
		ContentHash: rec.ContentHash.String(),
		Seal:        rec.Seal.String(),
	})
	return token.SignedString(secret)
}

// checkAttestation verifies the signature and that every attested field
// still matches the stored record.
func checkAttestation(rec *tokenRecord, secret []byte) error {
	claims := &attestationClaims{}
	_, err := jwt.ParseWithClaims(rec.Attestation, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return fmt.Errorf("attestation: %w", err)
	}
	switch {
	case claims.ID != strconv.FormatUint(rec.ID, 10):
		return fmt.Errorf("attestation: token id mismatch")
	case claims.Subject != rec.Owner:
		return fmt.Errorf("attestation: owner mismatch")
	case claims.Seq != rec.Seq:
		return fmt.Errorf("attestation: sequence mismatch")
	case claims.ContentHash != rec.ContentHash.String():
		return fmt.Errorf("attestation: content hash mismatch")
	case claims.Seal != rec.Seal.String():
		return fmt.Errorf("attestation: seal mismatch")
	}
	return nil
}
