package projections

import (
	"context"

	"bookswap/internal/domain/conversation"
	"bookswap/internal/domain/failure"
)

// GetConversationsQuery carries input for the conversation list projection.
type GetConversationsQuery struct {
	ViewerID string
}

// GetConversationsDeps holds dependencies for the conversation list projection.
type GetConversationsDeps struct {
	Messages ConversationSource
	Blocks   BlockStatusReader
	Users    UserNames
}

// QueryGetConversations builds the viewer's chat list: one summary per
// counterpart with at least one message the viewer has not hidden.
// Computed from committed state on every call.
// PRE: ViewerID is the authenticated viewer
// POST: Sorted by last message time descending, ties by higher message ID
func QueryGetConversations(ctx context.Context, query GetConversationsQuery, deps GetConversationsDeps) ([]conversation.Summary, error) {
	if query.ViewerID == "" {
		return nil, failure.Validation("viewer ID is required")
	}

	latest, err := deps.Messages.ListLatestPerCounterpart(ctx, query.ViewerID)
	if err != nil {
		return nil, err
	}
	summaries := make([]conversation.Summary, 0, len(latest))
	if len(latest) == 0 {
		return summaries, nil
	}

	unread, err := deps.Messages.CountUnreadByCounterpart(ctx, query.ViewerID)
	if err != nil {
		return nil, err
	}

	counterpartIDs := make([]string, 0, len(latest))
	for _, m := range latest {
		counterpartID := m.CounterpartOf(query.ViewerID)
		counterpartIDs = append(counterpartIDs, counterpartID)

		status, err := deps.Blocks.Status(ctx, query.ViewerID, counterpartID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, conversation.NewSummary(query.ViewerID, m, unread[counterpartID], status))
	}

	users, err := deps.Users.GetUsers(ctx, counterpartIDs)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].CounterpartName = users[summaries[i].CounterpartID].DisplayName
	}

	conversation.SortByRecent(summaries)
	return summaries, nil
}
