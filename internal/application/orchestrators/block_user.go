package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"bookswap/internal/domain/block"
)

// BlockWriter creates and removes block relationships.
type BlockWriter interface {
	Block(ctx context.Context, rel block.Relationship) (block.Relationship, bool, error)
	Unblock(ctx context.Context, blockerID, blockedID string) error
}

// --- Block User ---

// BlockUserInput carries input for the block user orchestrator.
type BlockUserInput struct {
	ViewerID string
	TargetID string
	Reason   string
}

// BlockUserDeps holds dependencies for BlockUser.
type BlockUserDeps struct {
	Blocks BlockWriter
	Users  UserDirectory
	Now    func() time.Time
}

// ExecuteBlockUser blocks TargetID on behalf of ViewerID.
// PRE: ViewerID is the authenticated viewer; TargetID exists in the directory
// POST: Exactly one relationship ViewerID -> TargetID exists. A repeat call
// returns the original record with created = false.
func ExecuteBlockUser(ctx context.Context, input BlockUserInput, deps BlockUserDeps) (block.Relationship, bool, error) {
	rel := block.Relationship{
		BlockerID: input.ViewerID,
		BlockedID: input.TargetID,
		Reason:    input.Reason,
		CreatedAt: deps.Now().UTC(),
	}
	if err := rel.Validate(); err != nil {
		return block.Relationship{}, false, err
	}
	if _, err := deps.Users.GetUser(ctx, input.TargetID); err != nil {
		return block.Relationship{}, false, err
	}

	stored, created, err := deps.Blocks.Block(ctx, rel)
	if err != nil {
		return block.Relationship{}, false, err
	}
	if created {
		slog.Info("block_event", "event", "user_blocked", "blocker_id", input.ViewerID, "blocked_id", input.TargetID)
	}
	return stored, created, nil
}

// --- Unblock User ---

// UnblockUserInput carries input for the unblock user orchestrator.
type UnblockUserInput struct {
	ViewerID string
	TargetID string
}

// UnblockUserDeps holds dependencies for UnblockUser.
type UnblockUserDeps struct {
	Blocks BlockWriter
}

// ExecuteUnblockUser removes the ViewerID -> TargetID relationship.
// PRE: ViewerID is the authenticated viewer
// POST: Relationship deleted; failure.NotFound("block") if none was active
func ExecuteUnblockUser(ctx context.Context, input UnblockUserInput, deps UnblockUserDeps) error {
	if input.ViewerID == "" {
		return block.ErrEmptyBlockerID
	}
	if input.TargetID == "" {
		return block.ErrEmptyBlockedID
	}
	if err := deps.Blocks.Unblock(ctx, input.ViewerID, input.TargetID); err != nil {
		return err
	}
	slog.Info("block_event", "event", "user_unblocked", "blocker_id", input.ViewerID, "blocked_id", input.TargetID)
	return nil
}
