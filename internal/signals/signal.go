// Package signals carries the append-only notifications the hiring workflow
// emits for observers and auditors: an in-process publish/subscribe bus and
// a durable journal every published signal is written to.
package signals

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/codec"
	"github.com/dmitrijs2005/hireledger/internal/digest"
	"github.com/fxamacker/cbor/v2"
)

type Type string

const (
	AdvertCreated           Type = "advert.created"
	ApplicationSubmitted    Type = "application.submitted"
	ApplicationRemoved      Type = "application.removed"
	VerificationResult      Type = "verification.result"
	SecondPartSubmitted     Type = "escrow.submitted"
	SecondPartAccessGranted Type = "escrow.access_granted"
	ScoreRecorded           Type = "score.recorded"
	PairScoreChecked        Type = "score.pair_checked"
	ShortlistComputed       Type = "shortlist.computed"
)

// Types lists every signal type in a stable order.
var Types = []Type{
	AdvertCreated,
	ApplicationSubmitted,
	ApplicationRemoved,
	VerificationResult,
	SecondPartSubmitted,
	SecondPartAccessGranted,
	ScoreRecorded,
	PairScoreChecked,
	ShortlistComputed,
}

// Signal is one published notification. Seq is assigned by the journal and
// is zero when no journal is attached.
type Signal struct {
	Seq       uint64
	Type      Type
	Timestamp time.Time
	Data      any
}

type AdvertCreatedData struct {
	AdvertID      int64     `cbor:"advert_id"`
	TokenID       uint64    `cbor:"token_id"`
	ReferenceLink string    `cbor:"reference_link"`
	Deadline      time.Time `cbor:"deadline"`
}

type ApplicationSubmittedData struct {
	AdvertID    int64  `cbor:"advert_id"`
	TokenID     uint64 `cbor:"token_id"`
	Identifier  string `cbor:"identifier"`
	SubmittedBy string `cbor:"submitted_by"`
}

type ApplicationRemovedData struct {
	AdvertID   int64  `cbor:"advert_id"`
	TokenID    uint64 `cbor:"token_id"`
	Identifier string `cbor:"identifier"`
	RemovedBy  string `cbor:"removed_by"`
}

type VerificationResultData struct {
	AdvertID   int64  `cbor:"advert_id"`
	TokenID    uint64 `cbor:"token_id"`
	Identifier string `cbor:"identifier"`
	Matched    bool   `cbor:"matched"`
}

type SecondPartSubmittedData struct {
	Commitment     digest.Hash `cbor:"commitment"`
	ActivationTime time.Time   `cbor:"activation"`
	ExpiryTime     time.Time   `cbor:"expiry"`
}

type SecondPartAccessGrantedData struct {
	Commitment digest.Hash `cbor:"commitment"`
	AdvertID   int64       `cbor:"advert_id,omitempty"`
	Identifier string      `cbor:"identifier,omitempty"`
}

// Score kinds.
const (
	ScoreKindPair        = "pair"
	ScoreKindApplication = "application"
)

type ScoreRecordedData struct {
	Kind          string `cbor:"kind"`
	TokenID       uint64 `cbor:"token_id,omitempty"`
	Identifier    string `cbor:"identifier,omitempty"`
	SecondPartRef string `cbor:"second_part_ref,omitempty"`
	IdentifierA   string `cbor:"identifier_a,omitempty"`
	IdentifierB   string `cbor:"identifier_b,omitempty"`
	Score         uint16 `cbor:"score"`
}

type PairScoreCheckedData struct {
	AdvertID    int64  `cbor:"advert_id"`
	TokenID     uint64 `cbor:"token_id"`
	IdentifierA string `cbor:"identifier_a"`
	IdentifierB string `cbor:"identifier_b"`
	Score       uint16 `cbor:"score"`
}

type ShortlistComputedData struct {
	AdvertID  int64    `cbor:"advert_id"`
	Threshold uint16   `cbor:"threshold"`
	TokenIDs  []uint64 `cbor:"token_ids"`
}

// decodeData rebuilds the typed payload of a journaled signal. Payloads
// come back as values, the same shape they are published with.
func decodeData(t Type, raw cbor.RawMessage) (any, error) {
	switch t {
	case AdvertCreated:
		return decodeAs[AdvertCreatedData](t, raw)
	case ApplicationSubmitted:
		return decodeAs[ApplicationSubmittedData](t, raw)
	case ApplicationRemoved:
		return decodeAs[ApplicationRemovedData](t, raw)
	case VerificationResult:
		return decodeAs[VerificationResultData](t, raw)
	case SecondPartSubmitted:
		return decodeAs[SecondPartSubmittedData](t, raw)
	case SecondPartAccessGranted:
		return decodeAs[SecondPartAccessGrantedData](t, raw)
	case ScoreRecorded:
		return decodeAs[ScoreRecordedData](t, raw)
	case PairScoreChecked:
		return decodeAs[PairScoreCheckedData](t, raw)
	case ShortlistComputed:
		return decodeAs[ShortlistComputedData](t, raw)
	}
	return nil, fmt.Errorf("unknown signal type %q", t)
}

func decodeAs[T any](t Type, raw cbor.RawMessage) (any, error) {
	var v T
	if err := codec.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return v, nil
}
