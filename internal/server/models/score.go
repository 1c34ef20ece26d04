package models

import "time"

// PairScore is an oracle-supplied comparison score for an ordered pair of
// identifiers.
type PairScore struct {
	IdentifierA string
	IdentifierB string
	Score       uint16
}

// ShortlistEntry is one qualified application.
type ShortlistEntry struct {
	TokenID uint64
	Score   uint16
}

// Shortlist is the last top-K result computed for an advert.
type Shortlist struct {
	AdvertID   int64
	Threshold  uint16
	Entries    []ShortlistEntry
	ComputedAt time.Time
}
