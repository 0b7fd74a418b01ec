package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"bookswap/internal/domain/failure"
)

// ErrEmptyCounterpartID rejects pair operations without a counterpart.
var ErrEmptyCounterpartID = failure.Validation("counterpart ID is required")

// ErrSelfConversation rejects pair operations on the viewer's own ID.
var ErrSelfConversation = failure.Validation("viewer and counterpart must differ")

// validatePair checks the (viewer, counterpart) arguments shared by pair operations.
func validatePair(viewerID, counterpartID string) error {
	if viewerID == "" {
		return failure.Validation("viewer ID is required")
	}
	if counterpartID == "" {
		return ErrEmptyCounterpartID
	}
	if viewerID == counterpartID {
		return ErrSelfConversation
	}
	return nil
}

// ReadMarker marks messages read.
type ReadMarker interface {
	MarkRead(ctx context.Context, viewerID, counterpartID string, at time.Time) (int, error)
}

// MarkReadInput carries input for the mark read orchestrator.
type MarkReadInput struct {
	ViewerID      string
	CounterpartID string
}

// MarkReadDeps holds dependencies for MarkRead.
type MarkReadDeps struct {
	Messages ReadMarker
	Now      func() time.Time
}

// ExecuteMarkRead marks every unread message from CounterpartID to ViewerID as read.
// PRE: ViewerID is the authenticated viewer
// POST: Returns the number of messages updated; a repeat call returns 0
func ExecuteMarkRead(ctx context.Context, input MarkReadInput, deps MarkReadDeps) (int, error) {
	if err := validatePair(input.ViewerID, input.CounterpartID); err != nil {
		return 0, err
	}
	n, err := deps.Messages.MarkRead(ctx, input.ViewerID, input.CounterpartID, deps.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("message_event", "event", "messages_read", "viewer_id", input.ViewerID, "counterpart_id", input.CounterpartID, "count", n)
	}
	return n, nil
}

// ConversationHider applies the per-viewer soft delete.
type ConversationHider interface {
	HideConversation(ctx context.Context, viewerID, counterpartID string) (int, error)
}

// HideConversationInput carries input for the hide conversation orchestrator.
type HideConversationInput struct {
	ViewerID      string
	CounterpartID string
}

// HideConversationDeps holds dependencies for HideConversation.
type HideConversationDeps struct {
	Messages ConversationHider
}

// ExecuteHideConversation hides the pair conversation for ViewerID only.
// PRE: ViewerID is the authenticated viewer
// POST: Every pair message is hidden for ViewerID; the counterpart's view is unchanged.
// Returns failure.NotFound("conversation") when the pair has never exchanged a message.
func ExecuteHideConversation(ctx context.Context, input HideConversationInput, deps HideConversationDeps) (int, error) {
	if err := validatePair(input.ViewerID, input.CounterpartID); err != nil {
		return 0, err
	}
	n, err := deps.Messages.HideConversation(ctx, input.ViewerID, input.CounterpartID)
	if err != nil {
		return 0, err
	}
	slog.Info("message_event", "event", "conversation_hidden", "viewer_id", input.ViewerID, "counterpart_id", input.CounterpartID, "count", n)
	return n, nil
}
