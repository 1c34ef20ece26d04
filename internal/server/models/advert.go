// Package models defines server-side records persisted by the repositories.
package models

import (
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
)

// Advert is a job posting. The id is chosen by the owner; the token id is
// the registry token that represents the advert itself.
type Advert struct {
	ID                int64
	TokenID           uint64
	Owner             string
	Deadline          time.Time
	ReferenceLink     string
	SubmissionEnabled bool
	Verified          bool
	CreatedAt         time.Time
}

// Stage is the lifecycle position of an advert derived from its flags.
type Stage string

const (
	StageOpen             Stage = "open"
	StageClosedUnverified Stage = "closed_unverified"
	StageClosedVerified   Stage = "closed_verified"
	StageShortlisted      Stage = "shortlisted"
)

// Stage derives the advert's lifecycle position. hasShortlist tells whether a
// shortlist has been computed for the advert.
func (a *Advert) Stage(hasShortlist bool) Stage {
	switch {
	case a.SubmissionEnabled:
		return StageOpen
	case !a.Verified:
		return StageClosedUnverified
	case hasShortlist:
		return StageShortlisted
	default:
		return StageClosedVerified
	}
}

// CheckRetrievable gates escrow pulls and pair-score checks: the advert
// must be verified and closed to submissions.
func (a *Advert) CheckRetrievable() error {
	if !a.Verified {
		return common.ErrNotVerified
	}
	if a.SubmissionEnabled {
		return common.ErrSubmissionOpen
	}
	return nil
}
