package projections

import (
	"context"

	messageStore "bookswap/internal/adapters/storage/message"
	domainBlock "bookswap/internal/domain/block"
	domainMessage "bookswap/internal/domain/message"
	domainUser "bookswap/internal/domain/user"
)

// MessageReader interface for per-viewer message queries.
type MessageReader interface {
	GetByID(ctx context.Context, id int64) (domainMessage.Message, error)
	ListBetween(ctx context.Context, viewerID, counterpartID string, filter messageStore.ListFilter) ([]domainMessage.Message, error)
	CountBetween(ctx context.Context, viewerID, counterpartID string) (int, error)
}

// UnreadCounter interface for read-state queries.
type UnreadCounter interface {
	CountUnread(ctx context.Context, viewerID string) (int, error)
	CountUnreadFrom(ctx context.Context, viewerID, counterpartID string) (int, error)
}

// ConversationSource interface for chat-list aggregation.
type ConversationSource interface {
	ListLatestPerCounterpart(ctx context.Context, viewerID string) ([]domainMessage.Message, error)
	CountUnreadByCounterpart(ctx context.Context, viewerID string) (map[string]int, error)
}

// BlockStatusReader interface for directed block state.
type BlockStatusReader interface {
	Status(ctx context.Context, userA, userB string) (domainBlock.Status, error)
}

// BlockLister interface for a blocker's relationships.
type BlockLister interface {
	ListBlockedBy(ctx context.Context, blockerID string) ([]domainBlock.Relationship, error)
}

// UserNames interface for display name lookups.
type UserNames interface {
	GetUsers(ctx context.Context, ids []string) (map[string]domainUser.User, error)
}
