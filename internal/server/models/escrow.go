package models

import (
	"time"

	"github.com/dmitrijs2005/hireledger/internal/common"
	"github.com/dmitrijs2005/hireledger/internal/digest"
)

// EscrowRecord holds the reference to an encrypted second part, retrievable
// only inside [ActivationTime, ExpiryTime].
type EscrowRecord struct {
	Commitment     digest.Hash
	CiphertextRef  string
	ActivationTime time.Time
	ExpiryTime     time.Time
	SubmittedBy    string
}

// NewEscrowRecord computes the expiry from the activation time.
func NewEscrowRecord(commitment digest.Hash, ref string, activation time.Time, submittedBy string) *EscrowRecord {
	return &EscrowRecord{
		Commitment:     commitment,
		CiphertextRef:  ref,
		ActivationTime: activation,
		ExpiryTime:     activation.Add(common.EscrowValidity),
		SubmittedBy:    submittedBy,
	}
}

// CheckWindow returns nil if now lies within the escrow window (both ends
// inclusive), ErrNotYetActive before it and ErrExpired after it.
func (r *EscrowRecord) CheckWindow(now time.Time) error {
	if now.Before(r.ActivationTime) {
		return common.ErrNotYetActive
	}
	if now.After(r.ExpiryTime) {
		return common.ErrExpired
	}
	return nil
}
