// Package common defines shared constants and sentinel errors used across
// the server, the ledger and the CLI. Callers should use errors.Is to match
// these values: every specific error wraps exactly one kind, so both the
// specific error and its kind match.
package common

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrorNotFound    = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAlreadyExists = errors.New("already exists")
	ErrState         = errors.New("invalid lifecycle state")
	ErrTimeWindow    = errors.New("outside time window")
	ErrValidation    = errors.New("validation error")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")

	// ErrConflict: the store aborted the operation because of a concurrent
	// one. Running it again may succeed.
	ErrConflict = errors.New("concurrent update conflict")
)

// Adverts and applications.
var (
	ErrAdvertNotFound         = fmt.Errorf("advert %w", ErrorNotFound)
	ErrApplicationNotFound    = fmt.Errorf("application %w", ErrorNotFound)
	ErrTokenNotFound          = fmt.Errorf("token %w", ErrorNotFound)
	ErrDuplicateAdvert        = fmt.Errorf("advert id %w", ErrAlreadyExists)
	ErrDuplicateReferenceLink = fmt.Errorf("reference link %w", ErrAlreadyExists)
	ErrDuplicateSubmission    = fmt.Errorf("submission %w", ErrAlreadyExists)
	ErrSubmissionClosed       = fmt.Errorf("%w: submission closed", ErrState)
	ErrSubmissionOpen         = fmt.Errorf("%w: submission still open", ErrState)
	ErrNotVerified            = fmt.Errorf("%w: advert not verified", ErrState)
)

// Escrow.
var (
	ErrUnknownCommitment = fmt.Errorf("commitment %w", ErrorNotFound)
	ErrNotYetActive      = fmt.Errorf("%w: not yet active", ErrTimeWindow)
	ErrExpired           = fmt.Errorf("%w: expired", ErrTimeWindow)
	ErrPresignDisabled   = fmt.Errorf("%w: object storage not configured", ErrState)
)

// Input validation.
var (
	ErrInvalidCalendarDate = fmt.Errorf("%w: invalid calendar date", ErrValidation)
	ErrInvalidPeriod       = fmt.Errorf("%w: invalid period", ErrValidation)
	ErrInvalidHash         = fmt.Errorf("%w: invalid hash", ErrValidation)
)
