package message

import (
	"context"
	"time"

	domain "bookswap/internal/domain/message"
)

// ListFilter carries pagination for pair listings.
type ListFilter struct {
	Limit  int
	Offset int
}

// Store persists Message state. Every listing and count is computed from the
// viewer's side: rows the viewer has hidden are never returned or counted.
type Store interface {
	// Append inserts a new message and returns its ID.
	// PRE: m has been validated
	// POST: Returns the monotonic ID assigned to the row
	Append(ctx context.Context, m domain.Message) (int64, error)

	// GetByID retrieves a Message by its ID regardless of visibility.
	// POST: Returns failure.NotFound("message") if absent
	GetByID(ctx context.Context, id int64) (domain.Message, error)

	// ListBetween returns the pair's messages visible to viewerID,
	// ascending by (sent_at, id).
	ListBetween(ctx context.Context, viewerID, counterpartID string, filter ListFilter) ([]domain.Message, error)

	// CountBetween counts the pair's messages visible to viewerID.
	CountBetween(ctx context.Context, viewerID, counterpartID string) (int, error)

	// MarkRead sets read_at on unread messages from counterpartID to viewerID.
	// POST: Returns the number of rows actually updated (0 on repeat calls)
	MarkRead(ctx context.Context, viewerID, counterpartID string, at time.Time) (int, error)

	// CountUnread counts unread, non-hidden messages received by viewerID.
	CountUnread(ctx context.Context, viewerID string) (int, error)

	// CountUnreadFrom is CountUnread scoped to one counterpart.
	CountUnreadFrom(ctx context.Context, viewerID, counterpartID string) (int, error)

	// CountUnreadByCounterpart returns CountUnreadFrom for every counterpart
	// with at least one unread message.
	CountUnreadByCounterpart(ctx context.Context, viewerID string) (map[string]int, error)

	// HideConversation sets the viewer's hidden flag on every pair message
	// in one transaction.
	// POST: Returns failure.NotFound("conversation") if the pair has no messages;
	// otherwise the number of rows newly hidden (0 on repeat calls)
	HideConversation(ctx context.Context, viewerID, counterpartID string) (int, error)

	// ListLatestPerCounterpart returns, for each counterpart with a message
	// visible to viewerID, the latest such message, newest first.
	ListLatestPerCounterpart(ctx context.Context, viewerID string) ([]domain.Message, error)
}
