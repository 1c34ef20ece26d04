// Package digest defines the 32-byte hash used for content hashes, seals and
// escrow commitments.
package digest

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"golang.org/x/crypto/sha3"
)

// Hash is a 32-byte digest.
type Hash [32]byte

// Zero is the empty hash; it never identifies a real record.
var Zero Hash

// Keccak256 hashes data with legacy Keccak-256 (the pre-NIST padding).
func Keccak256(data []byte) Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// String returns the lower-case hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Equal compares in constant time.
func (h Hash) Equal(other Hash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Parse decodes a 64-character hex string, with or without a 0x prefix.
func Parse(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: %v", common.ErrInvalidHash, err)
	}
	if len(decoded) != len(h) {
		return h, fmt.Errorf("%w: %d bytes, want %d", common.ErrInvalidHash, len(decoded), len(h))
	}
	copy(h[:], decoded)
	return h, nil
}

// FromBytes copies b into a Hash; b must be exactly 32 bytes.
func FromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != len(h) {
		return h, fmt.Errorf("%w: %d bytes, want %d", common.ErrInvalidHash, len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}
