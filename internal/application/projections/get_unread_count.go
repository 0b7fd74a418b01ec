package projections

import (
	"context"

	"bookswap/internal/domain/failure"
)

// GetUnreadCountQuery carries input for the unread count projection.
// An empty CounterpartID counts across all counterparts.
type GetUnreadCountQuery struct {
	ViewerID      string
	CounterpartID string
}

// GetUnreadCountDeps holds dependencies for the unread count projection.
type GetUnreadCountDeps struct {
	Messages UnreadCounter
}

// QueryGetUnreadCount counts unread messages to the viewer that the viewer has not hidden.
// INVARIANT: the total equals the sum of the per-counterpart counts
func QueryGetUnreadCount(ctx context.Context, query GetUnreadCountQuery, deps GetUnreadCountDeps) (int, error) {
	if query.ViewerID == "" {
		return 0, failure.Validation("viewer ID is required")
	}
	if query.CounterpartID == "" {
		return deps.Messages.CountUnread(ctx, query.ViewerID)
	}
	if query.CounterpartID == query.ViewerID {
		return 0, failure.Validation("viewer and counterpart must differ")
	}
	return deps.Messages.CountUnreadFrom(ctx, query.ViewerID, query.CounterpartID)
}
