// Package ledger is the token registry: an NFT-style ledger that mints one
// token per advert and per submitted CV, and captures a tamper-evident seal
// for every token at mint time.
package ledger

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/digest"
)

// Registry is the surface the hiring services depend on.
type Registry interface {
	// Mint creates a token owned by owner for contentRef and returns its id.
	Mint(ctx context.Context, owner, contentRef string) (uint64, error)
	// Burn retires a token. Burning an unknown token fails with ErrTokenNotFound.
	Burn(ctx context.Context, tokenID uint64) error
	Exists(ctx context.Context, tokenID uint64) (bool, error)
	// TotalCount is the number of live tokens.
	TotalCount(ctx context.Context) (uint64, error)
	// IDAt enumerates live tokens in mint order.
	IDAt(ctx context.Context, index uint64) (uint64, error)
	// ContentHash is the hash function used for content refs.
	ContentHash(contentRef string) digest.Hash
	// VerifiedHash reports whether candidate matches the content hash attested
	// for tokenID at mint time.
	VerifiedHash(ctx context.Context, tokenID uint64, candidate digest.Hash) (bool, error)
	// Seal returns the per-token value captured once at mint time.
	Seal(ctx context.Context, tokenID uint64) (digest.Hash, error)
}
