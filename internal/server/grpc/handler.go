package grpc

import (
	"context"

	"github.com/dmitrijs2005/hireledger/internal/server/models"
)

func (s *Server) Ping(ctx context.Context, _ *Empty) (*PingReply, error) {
	if err := s.ping(ctx); err != nil {
		s.logger.Warn(ctx, "ping failed", "error", err)
		return nil, toStatus(err)
	}
	return &PingReply{Status: "OK"}, nil
}

func (s *Server) CreateAdvert(ctx context.Context, in *CreateAdvertRequest) (*AdvertReply, error) {
	a, err := s.svc.Adverts.CreateAdvert(ctx, in.AdvertID, in.PeriodDays, in.ReferenceLink)
	if err != nil {
		return nil, toStatus(err)
	}
	return advertReply(a, models.StageOpen), nil
}

func (s *Server) GetAdvert(ctx context.Context, in *AdvertRequest) (*AdvertReply, error) {
	v, err := s.svc.Adverts.GetAdvert(ctx, in.AdvertID)
	if err != nil {
		return nil, toStatus(err)
	}
	return advertReply(v.Advert, v.Stage), nil
}

func (s *Server) CloseSubmission(ctx context.Context, in *AdvertRequest) (*CloseSubmissionReply, error) {
	a, outcomes, err := s.svc.Adverts.CloseSubmission(ctx, in.AdvertID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CloseSubmissionReply{
		Advert:   *advertReply(a, a.Stage(false)),
		Outcomes: outcomesReply(outcomes),
	}, nil
}

func (s *Server) ApplicationsForAdvert(ctx context.Context, in *AdvertRequest) (*TokenIDsReply, error) {
	ids, err := s.svc.Adverts.ApplicationsForAdvert(ctx, in.AdvertID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TokenIDsReply{TokenIDs: ids}, nil
}

func (s *Server) ComputeTopApplications(ctx context.Context, in *ComputeTopRequest) (*ShortlistReply, error) {
	sl, err := s.svc.Adverts.ComputeTopApplications(ctx, in.AdvertID, in.Threshold)
	if err != nil {
		return nil, toStatus(err)
	}
	return shortlistReply(sl), nil
}

func (s *Server) QualifiedApplications(ctx context.Context, in *AdvertRequest) (*ShortlistReply, error) {
	sl, err := s.svc.Adverts.QualifiedApplications(ctx, in.AdvertID)
	if err != nil {
		return nil, toStatus(err)
	}
	return shortlistReply(sl), nil
}

func (s *Server) SubmitApplication(ctx context.Context, in *SubmitApplicationRequest) (*SubmissionReply, error) {
	sub, err := s.svc.Applications.SubmitApplication(ctx, in.AdvertID, in.Identifier)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SubmissionReply{Application: applicationReply(sub.Application), Commitment: sub.Commitment}, nil
}

func (s *Server) GetApplication(ctx context.Context, in *TokenRequest) (*ApplicationReply, error) {
	app, err := s.svc.Applications.GetApplication(ctx, in.TokenID)
	if err != nil {
		return nil, toStatus(err)
	}
	reply := applicationReply(app)
	return &reply, nil
}

func (s *Server) RemoveApplication(ctx context.Context, in *RemoveApplicationRequest) (*Empty, error) {
	if err := s.svc.Applications.RemoveApplication(ctx, in.TokenID, in.Identifier); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) CapturedHash(ctx context.Context, in *IdentifierRequest) (*HashReply, error) {
	h, err := s.svc.Applications.CapturedHash(ctx, in.Identifier)
	if err != nil {
		return nil, toStatus(err)
	}
	return &HashReply{Hash: h}, nil
}

func (s *Server) SubmitSecondPart(ctx context.Context, in *SubmitSecondPartRequest) (*EscrowReply, error) {
	rec, err := s.svc.Escrow.SubmitSecondPart(ctx, in.Commitment, in.CiphertextRef, in.ActivationDate)
	if err != nil {
		return nil, toStatus(err)
	}
	return &EscrowReply{
		Commitment:     rec.Commitment,
		CiphertextRef:  rec.CiphertextRef,
		ActivationTime: rec.ActivationTime,
		ExpiryTime:     rec.ExpiryTime,
	}, nil
}

func (s *Server) RequestAccess(ctx context.Context, in *CommitmentRequest) (*RefReply, error) {
	ref, err := s.svc.Escrow.RequestAccess(ctx, in.Commitment)
	if err != nil {
		return nil, toStatus(err)
	}
	return &RefReply{CiphertextRef: ref}, nil
}

func (s *Server) GetAllSecondParts(ctx context.Context, in *AdvertRequest) (*SecondPartsReply, error) {
	refs, err := s.svc.Escrow.GetAllSecondParts(ctx, in.AdvertID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SecondPartsReply{Refs: refs}, nil
}

func (s *Server) PrepareUpload(ctx context.Context, _ *Empty) (*UploadReply, error) {
	key, url, err := s.svc.Escrow.PrepareUpload(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &UploadReply{Key: key, URL: url}, nil
}

func (s *Server) PresignAccess(ctx context.Context, in *CommitmentRequest) (*URLReply, error) {
	url, err := s.svc.Escrow.PresignAccess(ctx, in.Commitment)
	if err != nil {
		return nil, toStatus(err)
	}
	return &URLReply{URL: url}, nil
}

func (s *Server) RecordPairScore(ctx context.Context, in *PairScoreRequest) (*Empty, error) {
	if err := s.svc.Scores.RecordPairScore(ctx, in.IdentifierA, in.IdentifierB, in.Score); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) ApplyScore(ctx context.Context, in *ApplyScoreRequest) (*Empty, error) {
	if err := s.svc.Scores.ApplyScoreToApplication(ctx, in.TokenID, in.Score); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) CheckPairScore(ctx context.Context, in *CheckPairScoreRequest) (*ScoreReply, error) {
	score, err := s.svc.Scores.CheckPairScore(ctx, in.AdvertID, in.TokenID, in.IdentifierA, in.IdentifierB)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ScoreReply{Score: score}, nil
}
