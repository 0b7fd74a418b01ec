package orchestrators

import (
	"context"
	"testing"
	"time"

	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/message"
)

func seededMessages() *mockMessageStore {
	return &mockMessageStore{messages: []message.Message{
		{ID: 1, SenderID: "1", ReceiverID: "2", Body: "a", SentAt: fixedTime},
		{ID: 2, SenderID: "1", ReceiverID: "2", Body: "b", SentAt: fixedTime.Add(time.Second)},
		{ID: 3, SenderID: "2", ReceiverID: "1", Body: "c", SentAt: fixedTime.Add(2 * time.Second)},
		{ID: 4, SenderID: "3", ReceiverID: "2", Body: "d", SentAt: fixedTime.Add(3 * time.Second)},
	}}
}

// TestExecuteMarkRead_Idempotent verifies the second call updates nothing.
func TestExecuteMarkRead_Idempotent(t *testing.T) {
	store := seededMessages()
	deps := MarkReadDeps{Messages: store, Now: fixedNow}
	ctx := context.Background()

	n, err := ExecuteMarkRead(ctx, MarkReadInput{ViewerID: "2", CounterpartID: "1"}, deps)
	if err != nil {
		t.Fatalf("first MarkRead: %v", err)
	}
	if n != 2 {
		t.Errorf("first MarkRead = %d, want 2", n)
	}
	if got := store.unreadFor("2"); got != 1 {
		t.Errorf("unread for 2 = %d, want 1 (message from 3 untouched)", got)
	}

	deps.Now = func() time.Time { return fixedTime.Add(time.Hour) }
	n, err = ExecuteMarkRead(ctx, MarkReadInput{ViewerID: "2", CounterpartID: "1"}, deps)
	if err != nil {
		t.Fatalf("second MarkRead: %v", err)
	}
	if n != 0 {
		t.Errorf("second MarkRead = %d, want 0", n)
	}
	if !store.messages[0].ReadAt.Equal(fixedTime) {
		t.Errorf("ReadAt changed to %v", store.messages[0].ReadAt)
	}
}

// TestExecuteMarkRead_Validation verifies bad pairs are rejected.
func TestExecuteMarkRead_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input MarkReadInput
	}{
		{"empty viewer", MarkReadInput{CounterpartID: "1"}},
		{"empty counterpart", MarkReadInput{ViewerID: "1"}},
		{"self", MarkReadInput{ViewerID: "1", CounterpartID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExecuteMarkRead(context.Background(), tt.input, MarkReadDeps{Messages: seededMessages(), Now: fixedNow})
			if !failure.Is(err, failure.KindValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

// TestExecuteHideConversation_Isolation verifies only the viewer's flags change.
func TestExecuteHideConversation_Isolation(t *testing.T) {
	store := seededMessages()
	deps := HideConversationDeps{Messages: store}
	ctx := context.Background()

	n, err := ExecuteHideConversation(ctx, HideConversationInput{ViewerID: "1", CounterpartID: "2"}, deps)
	if err != nil {
		t.Fatalf("HideConversation: %v", err)
	}
	if n != 3 {
		t.Errorf("hidden = %d, want 3", n)
	}
	for _, m := range store.messages[:3] {
		if !m.IsHiddenFor("1") {
			t.Errorf("message %d still visible to 1", m.ID)
		}
		if m.IsHiddenFor("2") {
			t.Errorf("message %d hidden for 2", m.ID)
		}
	}
	if store.messages[3].HiddenForSender || store.messages[3].HiddenForReceiver {
		t.Error("unrelated conversation was modified")
	}

	n, err = ExecuteHideConversation(ctx, HideConversationInput{ViewerID: "1", CounterpartID: "2"}, deps)
	if err != nil {
		t.Fatalf("repeat HideConversation: %v", err)
	}
	if n != 0 {
		t.Errorf("repeat hidden = %d, want 0", n)
	}
}

// TestExecuteHideConversation_NotFound verifies a pair without messages is reported.
func TestExecuteHideConversation_NotFound(t *testing.T) {
	_, err := ExecuteHideConversation(context.Background(),
		HideConversationInput{ViewerID: "1", CounterpartID: "3"},
		HideConversationDeps{Messages: seededMessages()})
	if !failure.Is(err, failure.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
