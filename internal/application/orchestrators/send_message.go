package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/message"
	"bookswap/internal/domain/user"
)

// ErrOwnListing rejects a buyer messaging their own listing.
var ErrOwnListing = failure.Validation("cannot message own listing")

// ErrBlockedByRecipient rejects a send when the listing owner blocks the sender.
var ErrBlockedByRecipient = failure.Permission("blocked by recipient")

// MessageAppender persists new messages.
type MessageAppender interface {
	Append(ctx context.Context, m message.Message) (int64, error)
}

// BlockStatusReader reports directed block state for a pair.
type BlockStatusReader interface {
	Status(ctx context.Context, userA, userB string) (block.Status, error)
}

// BookCatalog resolves listings.
type BookCatalog interface {
	GetBook(ctx context.Context, id string) (listing.Book, error)
}

// UserDirectory resolves users.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (user.User, error)
}

// SendMessageInput carries input for the send message orchestrator.
type SendMessageInput struct {
	SenderID string
	BookID   string
	Body     string
}

// SendMessageResult is the committed message plus listing details looked up
// at send time. The details are never stored with the message.
type SendMessageResult struct {
	Message    message.Message
	BookName   string
	OwnerName  string
	PriceCents int64
}

// SendMessageDeps holds dependencies for SendMessage.
type SendMessageDeps struct {
	Messages MessageAppender
	Blocks   BlockStatusReader
	Books    BookCatalog
	Users    UserDirectory
	Now      func() time.Time
}

// ExecuteSendMessage commits a message from SenderID to the owner of BookID.
// Only the owner's block of the sender stops delivery; the sender's own block
// of the owner does not.
// PRE: SenderID is the authenticated viewer
// POST: Exactly one message stored with ReceiverID = book owner, or no write at all
func ExecuteSendMessage(ctx context.Context, input SendMessageInput, deps SendMessageDeps) (SendMessageResult, error) {
	if input.SenderID == "" {
		return SendMessageResult{}, message.ErrEmptySenderID
	}
	if err := message.ValidateBody(input.Body); err != nil {
		return SendMessageResult{}, err
	}
	if input.BookID == "" {
		return SendMessageResult{}, failure.Validation("book ID is required")
	}

	book, err := deps.Books.GetBook(ctx, input.BookID)
	if err != nil {
		return SendMessageResult{}, err
	}
	if book.OwnerID == input.SenderID {
		return SendMessageResult{}, ErrOwnListing
	}
	if _, err := deps.Users.GetUser(ctx, input.SenderID); err != nil {
		return SendMessageResult{}, err
	}

	status, err := deps.Blocks.Status(ctx, input.SenderID, book.OwnerID)
	if err != nil {
		return SendMessageResult{}, err
	}
	if status.BBlocksA {
		slog.Info("message_event", "event", "send_rejected_blocked", "sender_id", input.SenderID, "receiver_id", book.OwnerID)
		return SendMessageResult{}, ErrBlockedByRecipient
	}

	m := message.Message{
		SenderID:   input.SenderID,
		ReceiverID: book.OwnerID,
		BookID:     book.ID,
		Body:       input.Body,
		SentAt:     deps.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return SendMessageResult{}, err
	}
	id, err := deps.Messages.Append(ctx, m)
	if err != nil {
		return SendMessageResult{}, err
	}
	m.ID = id

	result := SendMessageResult{
		Message:    m,
		BookName:   book.Name,
		PriceCents: book.PriceCents,
	}
	// The message is committed; a failed name lookup only thins the response.
	if owner, err := deps.Users.GetUser(ctx, book.OwnerID); err == nil {
		result.OwnerName = owner.DisplayName
	} else {
		slog.Warn("message_event", "event", "owner_lookup_failed", "owner_id", book.OwnerID, "error", err)
	}

	slog.Info("message_event", "event", "message_sent", "message_id", id, "sender_id", m.SenderID, "receiver_id", m.ReceiverID, "book_id", m.BookID)
	return result, nil
}
