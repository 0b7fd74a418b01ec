package web

import (
	"time"

	"bookswap/internal/application/listutil"
	"bookswap/internal/application/orchestrators"
	"bookswap/internal/application/projections"
	"bookswap/internal/domain/block"
	"bookswap/internal/domain/conversation"
	"bookswap/internal/domain/message"
)

// messageView is the wire form of a message. Hidden flags stay server side.
type messageView struct {
	ID         int64      `json:"id"`
	SenderID   string     `json:"sender_id"`
	ReceiverID string     `json:"receiver_id"`
	BookID     string     `json:"book_id,omitempty"`
	Body       string     `json:"body"`
	SentAt     time.Time  `json:"sent_at"`
	ReadAt     *time.Time `json:"read_at"` // null while unread
}

func newMessageView(m message.Message) messageView {
	v := messageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		BookID:     m.BookID,
		Body:       m.Body,
		SentAt:     m.SentAt,
	}
	if m.IsRead() {
		readAt := m.ReadAt
		v.ReadAt = &readAt
	}
	return v
}

func newMessageViews(msgs []message.Message) []messageView {
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, newMessageView(m))
	}
	return views
}

type sendMessageView struct {
	Message    messageView `json:"message"`
	BookName   string      `json:"book_name"`
	OwnerName  string      `json:"owner_name,omitempty"`
	PriceCents int64       `json:"price_cents"`
}

func newSendMessageView(res orchestrators.SendMessageResult) sendMessageView {
	return sendMessageView{
		Message:    newMessageView(res.Message),
		BookName:   res.BookName,
		OwnerName:  res.OwnerName,
		PriceCents: res.PriceCents,
	}
}

type messagesPageView struct {
	Messages []messageView     `json:"messages"`
	Page     listutil.PageInfo `json:"page"`
}

type conversationView struct {
	CounterpartID           string    `json:"counterpart_id"`
	CounterpartName         string    `json:"counterpart_name,omitempty"`
	LastMessageID           int64     `json:"last_message_id"`
	LastMessageBody         string    `json:"last_message_body"`
	LastMessageTime         time.Time `json:"last_message_time"`
	LastMessageFromViewer   bool      `json:"last_message_from_viewer"`
	UnreadCount             int       `json:"unread_count"`
	ViewerBlocksCounterpart bool      `json:"viewer_blocks_counterpart"`
	CounterpartBlocksViewer bool      `json:"counterpart_blocks_viewer"`
}

func newConversationViews(list []conversation.Summary) []conversationView {
	views := make([]conversationView, 0, len(list))
	for _, c := range list {
		views = append(views, conversationView(c))
	}
	return views
}

type unreadCountView struct {
	CounterpartID string `json:"counterpart_id,omitempty"`
	UnreadCount   int    `json:"unread_count"`
}

type blockView struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newBlockView(rel block.Relationship) blockView {
	return blockView{
		BlockerID: rel.BlockerID,
		BlockedID: rel.BlockedID,
		Reason:    rel.Reason,
		CreatedAt: rel.CreatedAt,
	}
}

type blockedUserView struct {
	BlockedID   string    `json:"blocked_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newBlockedUserViews(list []projections.BlockedUser) []blockedUserView {
	views := make([]blockedUserView, 0, len(list))
	for _, b := range list {
		views = append(views, blockedUserView{
			BlockedID:   b.BlockedID,
			DisplayName: b.DisplayName,
			Reason:      b.Reason,
			CreatedAt:   b.CreatedAt,
		})
	}
	return views
}

// blockStatusView reports both directions with the viewer as A.
type blockStatusView struct {
	ViewerBlocksTarget bool `json:"viewer_blocks_target"`
	TargetBlocksViewer bool `json:"target_blocks_viewer"`
}
