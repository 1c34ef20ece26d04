package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hireledger/internal/calendar"
	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/server/auth"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hireledger/internal/signals"
)

// EscrowService holds second-part ciphertext refs under their commitment
// and releases them only inside the escrow window.
type EscrowService struct {
	deps      *Deps
	presigner *Presigner
	log       logging.Logger
}

// NewEscrowService builds the vault. A nil presigner disables PrepareUpload
// and PresignAccess.
func NewEscrowService(deps *Deps, presigner *Presigner) *EscrowService {
	return &EscrowService{deps: deps, presigner: presigner, log: deps.logger("escrow")}
}

// SubmitSecondPart stores ref under commitment, active from activationDate
// (YYYYMMDD) for EscrowValidity. A record already stored under the same
// commitment is replaced.
func (s *EscrowService) SubmitSecondPart(ctx context.Context, commitment digest.Hash, ref string, activationDate uint32) (*models.EscrowRecord, error) {
	caller, err := requireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if commitment.IsZero() {
		return nil, fmt.Errorf("%w: zero commitment", common.ErrInvalidHash)
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: ciphertext ref is empty", common.ErrValidation)
	}
	activation, err := calendar.ToTime(activationDate)
	if err != nil {
		return nil, err
	}

	rec := models.NewEscrowRecord(commitment, ref, activation, caller.Subject)
	err = s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		if err := r.Escrow.Upsert(ctx, rec); err != nil {
			return err
		}
		out.add(signals.SecondPartSubmitted, signals.SecondPartSubmittedData{
			Commitment:     rec.Commitment,
			ActivationTime: rec.ActivationTime,
			ExpiryTime:     rec.ExpiryTime,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit second part: %w", err)
	}

	s.log.Info(ctx, "second part escrowed", "commitment", commitment, "activation", rec.ActivationTime)
	return rec, nil
}

// access resolves commitment within the current window.
func (s *EscrowService) access(ctx context.Context, r repomanager.Repos, commitment digest.Hash) (string, error) {
	rec, err := r.Escrow.Get(ctx, commitment)
	if err != nil {
		return "", err
	}
	if err := rec.CheckWindow(s.deps.now()); err != nil {
		return "", err
	}
	return rec.CiphertextRef, nil
}

// RequestAccess returns the ref escrowed under commitment. Holding the
// commitment is the only credential.
func (s *EscrowService) RequestAccess(ctx context.Context, commitment digest.Hash) (string, error) {
	var ref string
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		var err error
		ref, err = s.access(ctx, r, commitment)
		if err != nil {
			return err
		}
		out.add(signals.SecondPartAccessGranted, signals.SecondPartAccessGrantedData{Commitment: commitment})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("request access: %w", err)
	}
	return ref, nil
}

// GetAllSecondParts pulls the second part of every application of a closed,
// verified advert and records the identifier to ref mapping. The first
// failure aborts the whole batch.
func (s *EscrowService) GetAllSecondParts(ctx context.Context, advertID int64) (map[string]string, error) {
	if err := auth.PrincipalFrom(ctx).Require(auth.RoleOwner); err != nil {
		return nil, err
	}

	refs := map[string]string{}
	err := s.deps.inTx(ctx, func(ctx context.Context, r repomanager.Repos, out *outbox) error {
		advert, err := r.Adverts.Get(ctx, advertID)
		if err != nil {
			return err
		}
		if err := advert.CheckRetrievable(); err != nil {
			return err
		}

		apps, err := r.Applications.ListByAdvert(ctx, advertID)
		if err != nil {
			return err
		}
		for _, a := range apps {
			rec, err := r.Applications.GetIntegrity(ctx, a.Identifier)
			if err != nil {
				return fmt.Errorf("identifier %q: %w", a.Identifier, err)
			}
			ref, err := s.access(ctx, r, rec.Hash)
			if err != nil {
				return fmt.Errorf("identifier %q: %w", a.Identifier, err)
			}
			if err := r.Applications.SetSecondPart(ctx, a.Identifier, ref); err != nil {
				return err
			}
			refs[a.Identifier] = ref
			out.add(signals.SecondPartAccessGranted, signals.SecondPartAccessGrantedData{
				Commitment: rec.Hash,
				AdvertID:   advertID,
				Identifier: a.Identifier,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("second parts of advert %d: %w", advertID, err)
	}

	s.log.Info(ctx, "second parts pulled", "advert_id", advertID, "count", len(refs))
	return refs, nil
}

// PrepareUpload issues a storage key and a presigned PUT URL for uploading
// ciphertext out of band. The key is then escrowed with SubmitSecondPart.
func (s *EscrowService) PrepareUpload(ctx context.Context) (string, string, error) {
	if _, err := requireAuthenticated(ctx); err != nil {
		return "", "", err
	}
	if s.presigner == nil {
		return "", "", common.ErrPresignDisabled
	}
	key, url, err := s.presigner.PutURL(ctx)
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}
	return key, url, nil
}

// PresignAccess resolves commitment like RequestAccess and returns a
// presigned GET URL for the escrowed ref.
func (s *EscrowService) PresignAccess(ctx context.Context, commitment digest.Hash) (string, error) {
	if s.presigner == nil {
		return "", common.ErrPresignDisabled
	}
	ref, err := s.RequestAccess(ctx, commitment)
	if err != nil {
		return "", err
	}
	url, err := s.presigner.GetURL(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("presign access: %w", err)
	}
	return url, nil
}
