package block

import (
	"context"

	domain "bookswap/internal/domain/block"
)

// Store persists directed block relationships.
type Store interface {
	// Block records blockerID -> blockedID.
	// POST: Returns the active relationship and whether this call created it.
	// A repeat call returns the existing record unchanged, never a conflict.
	Block(ctx context.Context, rel domain.Relationship) (domain.Relationship, bool, error)

	// Unblock deletes the relationship.
	// POST: Returns failure.NotFound("block") if none is active
	Unblock(ctx context.Context, blockerID, blockedID string) error

	// Status reports both directions for the ordered pair (userA, userB).
	Status(ctx context.Context, userA, userB string) (domain.Status, error)

	// ListBlockedBy lists relationships created by blockerID, newest first.
	ListBlockedBy(ctx context.Context, blockerID string) ([]domain.Relationship, error)
}
