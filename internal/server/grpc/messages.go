package grpc

import (
	"time"

	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/dmitrijs2005/hireledger/internal/server/models"
	"github.com/dmitrijs2005/hireledger/internal/server/services"
)

type Empty struct{}

type PingReply struct {
	Status string `json:"status"`
}

type AdvertRequest struct {
	AdvertID int64 `json:"advert_id"`
}

type CreateAdvertRequest struct {
	AdvertID      int64  `json:"advert_id"`
	PeriodDays    uint32 `json:"period_days"`
	ReferenceLink string `json:"reference_link"`
}

type AdvertReply struct {
	AdvertID          int64     `json:"advert_id"`
	TokenID           uint64    `json:"token_id"`
	Owner             string    `json:"owner"`
	Deadline          time.Time `json:"deadline"`
	ReferenceLink     string    `json:"reference_link"`
	SubmissionEnabled bool      `json:"submission_enabled"`
	Verified          bool      `json:"verified"`
	Stage             string    `json:"stage,omitempty"`
}

type VerificationOutcome struct {
	TokenID    uint64 `json:"token_id"`
	Identifier string `json:"identifier"`
	Matched    bool   `json:"matched"`
}

type CloseSubmissionReply struct {
	Advert   AdvertReply           `json:"advert"`
	Outcomes []VerificationOutcome `json:"outcomes"`
}

type TokenIDsReply struct {
	TokenIDs []uint64 `json:"token_ids"`
}

type ComputeTopRequest struct {
	AdvertID  int64  `json:"advert_id"`
	Threshold uint16 `json:"threshold"`
}

type ShortlistEntry struct {
	TokenID uint64 `json:"token_id"`
	Score   uint16 `json:"score"`
}

type ShortlistReply struct {
	AdvertID   int64            `json:"advert_id"`
	Threshold  uint16           `json:"threshold"`
	Entries    []ShortlistEntry `json:"entries"`
	ComputedAt time.Time        `json:"computed_at"`
}

type SubmitApplicationRequest struct {
	AdvertID   int64  `json:"advert_id"`
	Identifier string `json:"identifier"`
}

type ApplicationReply struct {
	TokenID     uint64    `json:"token_id"`
	AdvertID    int64     `json:"advert_id"`
	Identifier  string    `json:"identifier"`
	Score       uint16    `json:"score"`
	SubmittedBy string    `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type SubmissionReply struct {
	Application ApplicationReply `json:"application"`
	Commitment  digest.Hash      `json:"commitment"`
}

type TokenRequest struct {
	TokenID uint64 `json:"token_id"`
}

type RemoveApplicationRequest struct {
	TokenID    uint64 `json:"token_id"`
	Identifier string `json:"identifier"`
}

type IdentifierRequest struct {
	Identifier string `json:"identifier"`
}

type HashReply struct {
	Hash digest.Hash `json:"hash"`
}

type SubmitSecondPartRequest struct {
	Commitment     digest.Hash `json:"commitment"`
	CiphertextRef  string      `json:"ciphertext_ref"`
	ActivationDate uint32      `json:"activation_date"`
}

type EscrowReply struct {
	Commitment     digest.Hash `json:"commitment"`
	CiphertextRef  string      `json:"ciphertext_ref"`
	ActivationTime time.Time   `json:"activation_time"`
	ExpiryTime     time.Time   `json:"expiry_time"`
}

type CommitmentRequest struct {
	Commitment digest.Hash `json:"commitment"`
}

type RefReply struct {
	CiphertextRef string `json:"ciphertext_ref"`
}

type SecondPartsReply struct {
	Refs map[string]string `json:"refs"`
}

type UploadReply struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type URLReply struct {
	URL string `json:"url"`
}

type PairScoreRequest struct {
	IdentifierA string `json:"identifier_a"`
	IdentifierB string `json:"identifier_b"`
	Score       uint16 `json:"score"`
}

type ApplyScoreRequest struct {
	TokenID uint64 `json:"token_id"`
	Score   uint16 `json:"score"`
}

type CheckPairScoreRequest struct {
	AdvertID    int64  `json:"advert_id"`
	TokenID     uint64 `json:"token_id"`
	IdentifierA string `json:"identifier_a"`
	IdentifierB string `json:"identifier_b"`
}

type ScoreReply struct {
	Score uint16 `json:"score"`
}

func advertReply(a *models.Advert, stage models.Stage) *AdvertReply {
	return &AdvertReply{
		AdvertID:          a.ID,
		TokenID:           a.TokenID,
		Owner:             a.Owner,
		Deadline:          a.Deadline,
		ReferenceLink:     a.ReferenceLink,
		SubmissionEnabled: a.SubmissionEnabled,
		Verified:          a.Verified,
		Stage:             string(stage),
	}
}

func applicationReply(a *models.Application) ApplicationReply {
	return ApplicationReply{
		TokenID:     a.TokenID,
		AdvertID:    a.AdvertID,
		Identifier:  a.Identifier,
		Score:       a.Score,
		SubmittedBy: a.SubmittedBy,
		CreatedAt:   a.CreatedAt,
	}
}

func shortlistReply(sl *models.Shortlist) *ShortlistReply {
	out := &ShortlistReply{
		AdvertID:   sl.AdvertID,
		Threshold:  sl.Threshold,
		Entries:    make([]ShortlistEntry, 0, len(sl.Entries)),
		ComputedAt: sl.ComputedAt,
	}
	for _, e := range sl.Entries {
		out.Entries = append(out.Entries, ShortlistEntry{TokenID: e.TokenID, Score: e.Score})
	}
	return out
}

func outcomesReply(in []services.VerificationOutcome) []VerificationOutcome {
	out := make([]VerificationOutcome, 0, len(in))
	for _, o := range in {
		out = append(out, VerificationOutcome{TokenID: o.TokenID, Identifier: o.Identifier, Matched: o.Matched})
	}
	return out
}
