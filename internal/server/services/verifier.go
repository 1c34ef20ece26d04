package services

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/ledger"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
)

// VerificationOutcome is the result of checking one application.
type VerificationOutcome struct {
	TokenID    uint64
	Identifier string
	Matched    bool
}

// Verifier checks that each application's identifier still hashes to the
// content hash attested for its token.
type Verifier struct {
	registry   ledger.Registry
	requireAll bool
	log        logging.Logger
}

func NewVerifier(deps *Deps) *Verifier {
	return &Verifier{
		registry:   deps.Registry,
		requireAll: deps.RequireAllVerified,
		log:        deps.logger("verifier"),
	}
}

// Verify checks every application of the advert in token id order.
func (v *Verifier) Verify(ctx context.Context, r repomanager.Repos, advertID int64) ([]VerificationOutcome, error) {
	apps, err := r.Applications.ListByAdvert(ctx, advertID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]VerificationOutcome, 0, len(apps))
	for _, a := range apps {
		ok, err := v.registry.VerifiedHash(ctx, a.TokenID, v.registry.ContentHash(a.Identifier))
		if err != nil {
			return nil, err
		}
		if !ok {
			v.log.Warn(ctx, "application failed verification", "advert_id", advertID, "token_id", a.TokenID)
		}
		outcomes = append(outcomes, VerificationOutcome{TokenID: a.TokenID, Identifier: a.Identifier, Matched: ok})
	}
	return outcomes, nil
}

// Passed applies the verification rule: one match is enough unless every
// application is required to match. No applications never passes.
func (v *Verifier) Passed(outcomes []VerificationOutcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, o := range outcomes {
		if o.Matched && !v.requireAll {
			return true
		}
		if !o.Matched && v.requireAll {
			return false
		}
	}
	return v.requireAll
}
