package message

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"bookswap/internal/domain/failure"
)

// MaxBodyLength is the maximum number of characters in a message body.
const MaxBodyLength = 4000

// Domain errors
var (
	ErrEmptySenderID   = failure.Validation("sender ID is required")
	ErrEmptyReceiverID = failure.Validation("receiver ID is required")
	ErrSelfMessage     = failure.Validation("sender and receiver must differ")
	ErrEmptyBody       = failure.Validation("message body cannot be empty")
	ErrBodyTooLong     = failure.Validation("message body is too long")
	ErrMissingSentAt   = failure.Validation("sent_at must be set")
)

// Message is a direct text message between two users, optionally
// referencing the listing that prompted it.
type Message struct {
	ID                int64 // monotonic surrogate assigned by the store
	SenderID          string
	ReceiverID        string
	BookID            string // context only, not re-validated after send
	Body              string
	SentAt            time.Time
	ReadAt            time.Time // zero while unread
	HiddenForSender   bool
	HiddenForReceiver bool
}

// ValidateBody checks a body independently of the rest of the message.
// PRE: none
// POST: Returns nil if body has visible content within MaxBodyLength
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return ErrBodyTooLong
	}
	return nil
}

// Validate checks if the Message has valid data.
// PRE: Message struct is populated
// POST: Returns nil if valid, a validation failure otherwise
func (m *Message) Validate() error {
	if m.SenderID == "" {
		return ErrEmptySenderID
	}
	if m.ReceiverID == "" {
		return ErrEmptyReceiverID
	}
	if m.SenderID == m.ReceiverID {
		return ErrSelfMessage
	}
	if err := ValidateBody(m.Body); err != nil {
		return err
	}
	if m.SentAt.IsZero() {
		return ErrMissingSentAt
	}
	return nil
}

// IsRead returns true if the message has been read.
// INVARIANT: ReadAt field is not mutated
func (m *Message) IsRead() bool {
	return !m.ReadAt.IsZero()
}

// MarkRead records when the message was read.
// PRE: Message exists
// POST: ReadAt is set to at if previously zero; never changed afterwards
func (m *Message) MarkRead(at time.Time) {
	if m.ReadAt.IsZero() {
		m.ReadAt = at
	}
}

// Involves reports whether userID is the sender or the receiver.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// CounterpartOf returns the other participant relative to viewerID.
// PRE: m.Involves(viewerID)
func (m *Message) CounterpartOf(viewerID string) string {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// IsHiddenFor reports whether viewerID has hidden this message.
// A non-participant never sees the message, so it counts as hidden.
func (m *Message) IsHiddenFor(viewerID string) bool {
	switch viewerID {
	case m.SenderID:
		return m.HiddenForSender
	case m.ReceiverID:
		return m.HiddenForReceiver
	}
	return true
}

// HideFor sets the hidden flag belonging to viewerID.
// POST: only the viewer's own flag changes; returns false if viewerID is not a participant
func (m *Message) HideFor(viewerID string) bool {
	switch viewerID {
	case m.SenderID:
		m.HiddenForSender = true
	case m.ReceiverID:
		m.HiddenForReceiver = true
	default:
		return false
	}
	return true
}

// PairKey returns the unordered pair key (low, high) for two user IDs.
// INVARIANT: PairKey(a, b) == PairKey(b, a)
func PairKey(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// SortNewestFirst orders messages by SentAt descending, ties broken by higher ID.
func SortNewestFirst(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.After(msgs[j].SentAt)
		}
		return msgs[i].ID > msgs[j].ID
	})
}
