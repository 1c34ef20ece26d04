package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
)

// ApplicationService registers CV submissions against adverts.
type ApplicationService struct {
	deps *Deps
	log  logging.Logger
}

func NewApplicationService(deps *Deps) *ApplicationService {
	return &ApplicationService{deps: deps, log: deps.logger("applications")}
}

// requireAuthenticated accepts any role.
func requireAuthenticated(ctx context.Context) (auth.Principal, error) {
	p := auth.PrincipalFrom(ctx)
	if err := p.Require(auth.RoleOwner, auth.RoleOracle, auth.RoleApplicant); err != nil {
		return p, err
	}
	return p, nil
}

// SubmitApplication mints a token for identifier under the advert owner and
// records the application. The returned commitment is the hash captured for
// identifier at its first submission; the second part is escrowed under it.
func (s *ApplicationService) SubmitApplication(ctx context.Context, advertID int64, identifier string) (*models.Submission, error) {
	caller, err := requireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is empty", common.ErrValidation)
	}

	var (
		sub    *models.Submission
		minted uint64
	)
	err = s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		advert, err := r.Adverts.Get(ctx, advertID)
		if err != nil {
			return err
		}
		if !advert.SubmissionEnabled {
			return common.ErrSubmissionClosed
		}

		dup, err := r.Applications.Exists(ctx, advertID, identifier)
		if err != nil {
			return err
		}
		if dup {
			return common.ErrDuplicateSubmission
		}

		minted, err = s.deps.Registry.Mint(ctx, advert.Owner, identifier)
		if err != nil {
			return fmt.Errorf("mint application token: %w", err)
		}
		tokenID := minted
		out.onRollback(func(ctx context.Context) { s.deps.burn(ctx, s.log, tokenID) })

		app := &models.Application{
			TokenID:     minted,
			AdvertID:    advertID,
			Identifier:  identifier,
			SubmittedBy: caller.Subject,
			CreatedAt:   s.deps.now(),
		}
		if err := r.Applications.Create(ctx, app); err != nil {
			return err
		}

		seal, err := s.deps.Registry.Seal(ctx, minted)
		if err != nil {
			return err
		}
		stored, err := r.Applications.PutIntegrityIfAbsent(ctx, &models.IntegrityRecord{Identifier: identifier, Hash: seal})
		if err != nil {
			return err
		}
		commitment := seal
		if !stored {
			rec, err := r.Applications.GetIntegrity(ctx, identifier)
			if err != nil {
				return err
			}
			commitment = rec.Hash
		}

		sub = &models.Submission{Application: app, Commitment: commitment}
		out.add(signals.ApplicationSubmitted, signals.ApplicationSubmittedData{
			AdvertID:    advertID,
			TokenID:     minted,
			Identifier:  identifier,
			SubmittedBy: caller.Subject,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit to advert %d: %w", advertID, err)
	}

	s.log.Info(ctx, "application submitted", "advert_id", advertID, "token_id", minted)
	return sub, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, tokenID uint64) (*models.Application, error) {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOwner); err != nil {
		return nil, err
	}

	var app *models.Application
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, _ *outbox) error {
		var err error
		app, err = r.Applications.Get(ctx, tokenID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get application %d: %w", tokenID, err)
	}
	return app, nil
}

// RemoveApplication withdraws an application. Only the owner or the
// original submitter may remove it. The captured hash, the forwarded second
// part and the cached score of identifier are dropped once no other
// application carries the same identifier. The token is burned after the
// removal commits.
func (s *ApplicationService) RemoveApplication(ctx context.Context, tokenID uint64, identifier string) error {
	caller, err := requireAuthenticated(ctx)
	if err != nil {
		return err
	}

	var released bool
	err = s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		if err := s.deps.requireLiveToken(ctx, tokenID); err != nil {
			return err
		}
		app, err := r.Applications.Get(ctx, tokenID)
		if err != nil {
			return err
		}
		if caller.Role != auth.RoleOwner && caller.Subject != app.SubmittedBy {
			return fmt.Errorf("%w: only the owner or the submitter may remove an application", common.ErrUnauthorized)
		}
		if app.Identifier != identifier {
			return fmt.Errorf("%w: identifier does not match application", common.ErrValidation)
		}

		if err := r.Applications.Delete(ctx, tokenID); err != nil {
			return err
		}
		inUse, err := r.Applications.IdentifierInUse(ctx, identifier)
		if err != nil {
			return err
		}
		if !inUse {
			if err := r.Applications.DeleteIntegrity(ctx, identifier); err != nil {
				return err
			}
			if err := r.Applications.DeleteSecondPart(ctx, identifier); err != nil {
				return err
			}
			if err := r.Scores.DeleteIdentifierScore(ctx, identifier); err != nil {
				return err
			}
			released = true
		}

		out.onCommit(func(ctx context.Context) { s.deps.burn(ctx, s.log, tokenID) })
		out.add(signals.ApplicationRemoved, signals.ApplicationRemovedData{
			AdvertID:   app.AdvertID,
			TokenID:    tokenID,
			Identifier: identifier,
			RemovedBy:  caller.Subject,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove application %d: %w", tokenID, err)
	}

	s.log.Info(ctx, "application removed", "token_id", tokenID, "identifier_released", released)
	return nil
}

// CapturedHash returns the hash captured for identifier at first submission.
func (s *ApplicationService) CapturedHash(ctx context.Context, identifier string) (digest.Hash, error) {
	var h digest.Hash
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, _ *outbox) error {
		rec, err := r.Applications.GetIntegrity(ctx, identifier)
		if err != nil {
			return err
		}
		h = rec.Hash
		return nil
	})
	if err != nil {
		return digest.Zero, fmt.Errorf("captured hash of %q: %w", identifier, err)
	}
	return h, nil
}
