package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/calendar"
	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
)

// AdvertService drives an advert from creation through closing and
// shortlisting.
type AdvertService struct {
	deps     *Deps
	verifier *Verifier
	log      logging.Logger
}

func NewAdvertService(deps *Deps) *AdvertService {
	return &AdvertService{
		deps:     deps,
		verifier: NewVerifier(deps),
		log:      deps.logger("adverts"),
	}
}

// AdvertView is an advert together with its derived lifecycle stage.
type AdvertView struct {
	Advert *models.Advert
	Stage  models.Stage
}

func (s *AdvertService) CreateAdvert(ctx context.Context, advertID int64, periodDays uint32, referenceLink string) (*models.Advert, error) {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOwner); err != nil {
		return nil, err
	}
	if advertID <= 0 {
		return nil, fmt.Errorf("%w: advert id must be positive", common.ErrValidation)
	}
	if referenceLink == "" {
		return nil, fmt.Errorf("%w: reference link is empty", common.ErrValidation)
	}
	period, err := calendar.Period(periodDays)
	if err != nil {
		return nil, err
	}

	now := s.deps.now()
	var (
		advert *models.Advert
		minted uint64
		total  int64
	)

	err = s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		if _, err := r.Adverts.Get(ctx, advertID); err == nil {
			return common.ErrDuplicateAdvert
		} else if !errors.Is(err, common.ErrAdvertNotFound) {
			return err
		}

		taken, err := r.Adverts.ReferenceLinkExists(ctx, referenceLink)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrDuplicateReferenceLink
		}

		minted, err = s.deps.Registry.Mint(ctx, s.deps.OwnerSubject, referenceLink)
		if err != nil {
			return fmt.Errorf("mint advert token: %w", err)
		}
		tokenID := minted
		out.onRollback(func(ctx context.Context) { s.deps.burn(ctx, s.log, tokenID) })

		advert = &models.Advert{
			ID:                advertID,
			TokenID:           minted,
			Owner:             s.deps.OwnerSubject,
			Deadline:          now.Add(period),
			ReferenceLink:     referenceLink,
			SubmissionEnabled: true,
			CreatedAt:         now,
		}
		if err := r.Adverts.Create(ctx, advert); err != nil {
			return err
		}

		total, err = r.Adverts.Count(ctx)
		if err != nil {
			return err
		}

		out.add(signals.AdvertCreated, signals.AdvertCreatedData{
			AdvertID:      advert.ID,
			TokenID:       advert.TokenID,
			ReferenceLink: advert.ReferenceLink,
			Deadline:      advert.Deadline,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create advert %d: %w", advertID, err)
	}

	s.log.Info(ctx, "advert created", "advert_id", advertID, "token_id", minted, "adverts_total", total)
	return advert, nil
}

// CloseSubmission verifies the advert's applications and stops further
// submissions. Closing an already closed advert only re-runs verification.
func (s *AdvertService) CloseSubmission(ctx context.Context, advertID int64) (*models.Advert, []VerificationOutcome, error) {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOwner); err != nil {
		return nil, nil, err
	}

	var (
		advert   *models.Advert
		outcomes []VerificationOutcome
	)
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		var err error
		advert, err = r.Adverts.Get(ctx, advertID)
		if err != nil {
			return err
		}

		outcomes, err = s.verifier.Verify(ctx, r, advertID)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			out.add(signals.VerificationResult, signals.VerificationResultData{
				AdvertID:   advertID,
				TokenID:    o.TokenID,
				Identifier: o.Identifier,
				Matched:    o.Matched,
			})
		}

		if s.verifier.Passed(outcomes) {
			advert.Verified = true
		}
		advert.SubmissionEnabled = false
		return r.Adverts.UpdateFlags(ctx, advert)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("close advert %d: %w", advertID, err)
	}

	s.log.Info(ctx, "submission closed", "advert_id", advertID, "checked", len(outcomes), "verified", advert.Verified)
	return advert, outcomes, nil
}

// ApplicationsForAdvert lists the advert's application token ids in mint
// order.
func (s *AdvertService) ApplicationsForAdvert(ctx context.Context, advertID int64) ([]uint64, error) {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOwner); err != nil {
		return nil, err
	}

	var ids []uint64
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, _ *outbox) error {
		if _, err := r.Adverts.Get(ctx, advertID); err != nil {
			return err
		}
		apps, err := r.Applications.ListByAdvert(ctx, advertID)
		if err != nil {
			return err
		}
		ids = make([]uint64, 0, len(apps))
		for _, a := range apps {
			ids = append(ids, a.TokenID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list applications of advert %d: %w", advertID, err)
	}
	return ids, nil
}

// ComputeTopApplications keeps the applications whose score reaches
// threshold and stores them as the advert's shortlist.
func (s *AdvertService) ComputeTopApplications(ctx context.Context, advertID int64, threshold uint16) (*models.Shortlist, error) {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOwner); err != nil {
		return nil, err
	}

	var sl *models.Shortlist
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		if _, err := r.Adverts.Get(ctx, advertID); err != nil {
			return err
		}
		apps, err := r.Applications.ListByAdvert(ctx, advertID)
		if err != nil {
			return err
		}

		sl = &models.Shortlist{
			AdvertID:   advertID,
			Threshold:  threshold,
			Entries:    []models.ShortlistEntry{},
			ComputedAt: s.deps.now(),
		}
		ids := []uint64{}
		for _, a := range apps {
			if a.Score >= threshold {
				sl.Entries = append(sl.Entries, models.ShortlistEntry{TokenID: a.TokenID, Score: a.Score})
				ids = append(ids, a.TokenID)
			}
		}
		if err := r.Scores.SaveShortlist(ctx, sl); err != nil {
			return err
		}

		out.add(signals.ShortlistComputed, signals.ShortlistComputedData{
			AdvertID:  advertID,
			Threshold: threshold,
			TokenIDs:  ids,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("shortlist advert %d: %w", advertID, err)
	}

	s.log.Info(ctx, "shortlist computed", "advert_id", advertID, "threshold", threshold, "qualified", len(sl.Entries))
	return sl, nil
}

// QualifiedApplications returns the last shortlist computed for the advert,
// or an empty one.
func (s *AdvertService) QualifiedApplications(ctx context.Context, advertID int64) (*models.Shortlist, error) {
	var sl *models.Shortlist
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, _ *outbox) error {
		if _, err := r.Adverts.Get(ctx, advertID); err != nil {
			return err
		}
		var err error
		sl, err = r.Scores.GetShortlist(ctx, advertID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("shortlist of advert %d: %w", advertID, err)
	}
	if sl == nil {
		sl = &models.Shortlist{AdvertID: advertID, Entries: []models.ShortlistEntry{}}
	}
	return sl, nil
}

func (s *AdvertService) GetAdvert(ctx context.Context, advertID int64) (*AdvertView, error) {
	var view *AdvertView
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, _ *outbox) error {
		advert, err := r.Adverts.Get(ctx, advertID)
		if err != nil {
			return err
		}
		sl, err := r.Scores.GetShortlist(ctx, advertID)
		if err != nil {
			return err
		}
		view = &AdvertView{Advert: advert, Stage: advert.Stage(sl != nil)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get advert %d: %w", advertID, err)
	}
	return view, nil
}
