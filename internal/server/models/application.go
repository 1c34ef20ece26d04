package models

import (
	"time"

	"github.com/dmitrijs2005/hireledger/internal/digest"
)

// Application is a candidate's first-part submission under one advert.
type Application struct {
	TokenID     uint64
	AdvertID    int64
	Identifier  string
	Score       uint16
	SubmittedBy string
	CreatedAt   time.Time
}

// Submission is what an applicant gets back: the application and the
// commitment that keys its second part in escrow.
type Submission struct {
	Application *Application
	Commitment  digest.Hash
}

// IntegrityRecord is the hash captured once per distinct identifier.
type IntegrityRecord struct {
	Identifier string
	Hash       digest.Hash
}
