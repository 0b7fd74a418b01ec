package message_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/message"
)

// TestMessage_Validate tests validation of Message.
func TestMessage_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		msg     message.Message
		wantErr error
	}{
		{
			name: "valid message",
			msg:  message.Message{SenderID: "1", ReceiverID: "2", BookID: "b1", Body: "Is this available?", SentAt: now},
		},
		{
			name:    "empty sender",
			msg:     message.Message{ReceiverID: "2", Body: "Hello!", SentAt: now},
			wantErr: message.ErrEmptySenderID,
		},
		{
			name:    "empty receiver",
			msg:     message.Message{SenderID: "1", Body: "Hello!", SentAt: now},
			wantErr: message.ErrEmptyReceiverID,
		},
		{
			name:    "self message",
			msg:     message.Message{SenderID: "1", ReceiverID: "1", Body: "Hello!", SentAt: now},
			wantErr: message.ErrSelfMessage,
		},
		{
			name:    "empty body",
			msg:     message.Message{SenderID: "1", ReceiverID: "2", SentAt: now},
			wantErr: message.ErrEmptyBody,
		},
		{
			name:    "whitespace body",
			msg:     message.Message{SenderID: "1", ReceiverID: "2", Body: " \t\n ", SentAt: now},
			wantErr: message.ErrEmptyBody,
		},
		{
			name:    "body too long",
			msg:     message.Message{SenderID: "1", ReceiverID: "2", Body: strings.Repeat("a", message.MaxBodyLength+1), SentAt: now},
			wantErr: message.ErrBodyTooLong,
		},
		{
			name:    "zero sent_at",
			msg:     message.Message{SenderID: "1", ReceiverID: "2", Body: "Hello!"},
			wantErr: message.ErrMissingSentAt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !failure.Is(err, failure.KindValidation) {
				t.Errorf("Validate() error kind = %q, want validation", failure.KindOf(err))
			}
		})
	}
}

// TestMessage_ReadStatus tests IsRead and MarkRead on Message.
func TestMessage_ReadStatus(t *testing.T) {
	t.Run("unread message", func(t *testing.T) {
		m := message.Message{SenderID: "a", ReceiverID: "b", Body: "c", SentAt: time.Now()}
		if m.IsRead() {
			t.Error("new message should be unread")
		}
	})

	t.Run("mark read", func(t *testing.T) {
		m := message.Message{SenderID: "a", ReceiverID: "b", Body: "c", SentAt: time.Now()}
		m.MarkRead(time.Now())
		if !m.IsRead() {
			t.Error("message should be read after MarkRead")
		}
	})

	t.Run("mark read is monotonic", func(t *testing.T) {
		m := message.Message{SenderID: "a", ReceiverID: "b", Body: "c", SentAt: time.Now()}
		first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
		m.MarkRead(first)
		m.MarkRead(first.Add(time.Hour))
		if !m.ReadAt.Equal(first) {
			t.Errorf("ReadAt = %v, want %v", m.ReadAt, first)
		}
	})
}

// TestMessage_Visibility tests the per-participant hidden flags.
func TestMessage_Visibility(t *testing.T) {
	m := message.Message{SenderID: "1", ReceiverID: "2", Body: "hi", SentAt: time.Now()}

	if m.IsHiddenFor("1") || m.IsHiddenFor("2") {
		t.Fatal("fresh message should be visible to both participants")
	}
	if !m.IsHiddenFor("3") {
		t.Error("non-participant should never see the message")
	}

	if !m.HideFor("1") {
		t.Fatal("HideFor sender should succeed")
	}
	if !m.IsHiddenFor("1") {
		t.Error("message should be hidden for sender")
	}
	if m.IsHiddenFor("2") {
		t.Error("hiding for sender must not affect receiver")
	}
	if m.HideFor("3") {
		t.Error("HideFor non-participant should report false")
	}
}

// TestMessage_CounterpartOf tests counterpart resolution from either side.
func TestMessage_CounterpartOf(t *testing.T) {
	m := message.Message{SenderID: "1", ReceiverID: "2"}
	if got := m.CounterpartOf("1"); got != "2" {
		t.Errorf("CounterpartOf(1) = %q, want 2", got)
	}
	if got := m.CounterpartOf("2"); got != "1" {
		t.Errorf("CounterpartOf(2) = %q, want 1", got)
	}
	if !m.Involves("1") || m.Involves("9") {
		t.Error("Involves mismatch")
	}
}

// TestPairKey tests that the pair key is order independent.
func TestPairKey(t *testing.T) {
	lo1, hi1 := message.PairKey("b", "a")
	lo2, hi2 := message.PairKey("a", "b")
	if lo1 != lo2 || hi1 != hi2 {
		t.Errorf("PairKey not symmetric: (%s,%s) vs (%s,%s)", lo1, hi1, lo2, hi2)
	}
	if lo1 != "a" || hi1 != "b" {
		t.Errorf("PairKey = (%s,%s), want (a,b)", lo1, hi1)
	}
}

// TestSortNewestFirst verifies time ordering with ID as tie-break.
func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	msgs := []message.Message{
		{ID: 1, SentAt: base},
		{ID: 2, SentAt: base.Add(time.Minute)},
		{ID: 3, SentAt: base},
	}
	message.SortNewestFirst(msgs)
	if msgs[0].ID != 2 || msgs[1].ID != 3 || msgs[2].ID != 1 {
		t.Errorf("order = %d,%d,%d, want 2,3,1", msgs[0].ID, msgs[1].ID, msgs[2].ID)
	}
}
