package block

import (
	"time"
	"unicode/utf8"

	"bookswap/internal/domain/failure"
)

// MaxReasonLength is the maximum number of characters in a block reason.
const MaxReasonLength = 500

// Domain errors
var (
	ErrEmptyBlockerID = failure.Validation("blocker ID is required")
	ErrEmptyBlockedID = failure.Validation("blocked user ID is required")
	ErrSelfBlock      = failure.Validation("cannot block yourself")
	ErrReasonTooLong  = failure.Validation("block reason is too long")
)

// Relationship is a directed block: BlockerID no longer receives messages
// from BlockedID. Nothing is implied about the reverse direction.
type Relationship struct {
	BlockerID string
	BlockedID string
	Reason    string // optional
	CreatedAt time.Time
}

// Validate checks if the Relationship has valid data.
// PRE: Relationship struct is populated
// POST: Returns nil if valid, a validation failure otherwise
func (r *Relationship) Validate() error {
	if r.BlockerID == "" {
		return ErrEmptyBlockerID
	}
	if r.BlockedID == "" {
		return ErrEmptyBlockedID
	}
	if r.BlockerID == r.BlockedID {
		return ErrSelfBlock
	}
	if utf8.RuneCountInString(r.Reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	if r.CreatedAt.IsZero() {
		return failure.Validation("created_at must be set")
	}
	return nil
}

// Status is the block state between an ordered pair (A, B).
// Both directions are reported independently.
type Status struct {
	ABlocksB bool
	BBlocksA bool
}

// Reverse returns the status seen from B's side.
// INVARIANT: s.Reverse().Reverse() == s
func (s Status) Reverse() Status {
	return Status{ABlocksB: s.BBlocksA, BBlocksA: s.ABlocksB}
}

// Any reports whether a block exists in either direction.
func (s Status) Any() bool {
	return s.ABlocksB || s.BBlocksA
}
