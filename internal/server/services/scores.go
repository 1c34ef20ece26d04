package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
)

// ScoreService records oracle scores. Scores are trusted as given.
type ScoreService struct {
	deps *Deps
	log  logging.Logger
}

func NewScoreService(deps *Deps) *ScoreService {
	return &ScoreService{deps: deps, log: deps.logger("scores")}
}

func (s *ScoreService) RecordPairScore(ctx context.Context, a, b string, score uint16) error {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOracle); err != nil {
		return err
	}
	if a == "" || b == "" {
		return fmt.Errorf("%w: identifier is empty", common.ErrValidation)
	}

	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		if err := r.Scores.PutPair(ctx, models.PairScore{IdentifierA: a, IdentifierB: b, Score: score}); err != nil {
			return err
		}
		out.add(signals.ScoreRecorded, signals.ScoreRecordedData{
			Kind:        signals.ScoreKindPair,
			IdentifierA: a,
			IdentifierB: b,
			Score:       score,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("record pair score: %w", err)
	}
	return nil
}

// ApplyScoreToApplication caches score on the application and on its
// identifier.
func (s *ScoreService) ApplyScoreToApplication(ctx context.Context, tokenID uint64, score uint16) error {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOracle); err != nil {
		return err
	}

	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		if err := s.deps.requireLiveToken(ctx, tokenID); err != nil {
			return err
		}
		app, err := r.Applications.Get(ctx, tokenID)
		if err != nil {
			return err
		}
		if err := r.Applications.SetScore(ctx, tokenID, score); err != nil {
			return err
		}
		if err := r.Scores.PutIdentifierScore(ctx, app.Identifier, score); err != nil {
			return err
		}
		ref, err := r.Applications.GetSecondPart(ctx, app.Identifier)
		if err != nil {
			return err
		}

		out.add(signals.ScoreRecorded, signals.ScoreRecordedData{
			Kind:          signals.ScoreKindApplication,
			TokenID:       tokenID,
			Identifier:    app.Identifier,
			SecondPartRef: ref,
			Score:         score,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("score application %d: %w", tokenID, err)
	}

	s.log.Debug(ctx, "application scored", "token_id", tokenID, "score", score)
	return nil
}

// CheckPairScore reads the recorded score of (a, b) for a closed, verified
// advert. Unscored pairs read as 0.
func (s *ScoreService) CheckPairScore(ctx context.Context, advertID int64, tokenID uint64, a, b string) (uint16, error) {
	var score uint16
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		advert, err := r.Adverts.Get(ctx, advertID)
		if err != nil {
			return err
		}
		if err := advert.CheckRetrievable(); err != nil {
			return err
		}
		score, err = r.Scores.GetPair(ctx, a, b)
		if err != nil {
			return err
		}
		out.add(signals.PairScoreChecked, signals.PairScoreCheckedData{
			AdvertID:    advertID,
			TokenID:     tokenID,
			IdentifierA: a,
			IdentifierB: b,
			Score:       score,
		})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("check pair score: %w", err)
	}
	return score, nil
}
