package orchestrators

import (
	"context"
	"errors"
	"time"

	"bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/message"
	"bookswap/internal/domain/user"
)

var fixedTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// mockMessageStore implements MessageAppender, ReadMarker and ConversationHider.
type mockMessageStore struct {
	messages  []message.Message
	appendErr error
}

func (m *mockMessageStore) Append(_ context.Context, msg message.Message) (int64, error) {
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	msg.ID = int64(len(m.messages) + 1)
	m.messages = append(m.messages, msg)
	return msg.ID, nil
}

func (m *mockMessageStore) MarkRead(_ context.Context, viewerID, counterpartID string, at time.Time) (int, error) {
	n := 0
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.ReceiverID == viewerID && msg.SenderID == counterpartID && !msg.IsRead() {
			msg.MarkRead(at)
			n++
		}
	}
	return n, nil
}

func (m *mockMessageStore) HideConversation(_ context.Context, viewerID, counterpartID string) (int, error) {
	found := false
	n := 0
	for i := range m.messages {
		msg := &m.messages[i]
		if !msg.Involves(viewerID) || msg.CounterpartOf(viewerID) != counterpartID {
			continue
		}
		found = true
		if !msg.IsHiddenFor(viewerID) && msg.HideFor(viewerID) {
			n++
		}
	}
	if !found {
		return 0, failure.NotFound("conversation")
	}
	return n, nil
}

func (m *mockMessageStore) unreadFor(viewerID string) int {
	n := 0
	for _, msg := range m.messages {
		if msg.ReceiverID == viewerID && !msg.IsRead() && !msg.IsHiddenFor(viewerID) {
			n++
		}
	}
	return n
}

// mockBlockStore implements BlockStatusReader and BlockWriter.
type mockBlockStore struct {
	rels      map[[2]string]block.Relationship
	statusErr error
}

func newMockBlockStore() *mockBlockStore {
	return &mockBlockStore{rels: make(map[[2]string]block.Relationship)}
}

func (m *mockBlockStore) Status(_ context.Context, a, b string) (block.Status, error) {
	if m.statusErr != nil {
		return block.Status{}, m.statusErr
	}
	_, ab := m.rels[[2]string{a, b}]
	_, ba := m.rels[[2]string{b, a}]
	return block.Status{ABlocksB: ab, BBlocksA: ba}, nil
}

func (m *mockBlockStore) Block(_ context.Context, rel block.Relationship) (block.Relationship, bool, error) {
	key := [2]string{rel.BlockerID, rel.BlockedID}
	if existing, ok := m.rels[key]; ok {
		return existing, false, nil
	}
	m.rels[key] = rel
	return rel, true, nil
}

func (m *mockBlockStore) Unblock(_ context.Context, blockerID, blockedID string) error {
	key := [2]string{blockerID, blockedID}
	if _, ok := m.rels[key]; !ok {
		return failure.NotFound("block")
	}
	delete(m.rels, key)
	return nil
}

// mockDirectory implements BookCatalog, UserDirectory and seedDirectory.
type mockDirectory struct {
	users   map[string]user.User
	books   map[string]listing.Book
	userErr error
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		users: map[string]user.User{
			"1": {ID: "1", DisplayName: "Ana"},
			"2": {ID: "2", DisplayName: "Ben"},
			"3": {ID: "3", DisplayName: "Cy"},
		},
		books: map[string]listing.Book{
			"book-of-2": {ID: "book-of-2", OwnerID: "2", Name: "Dune", PriceCents: 1200},
			"book-of-1": {ID: "book-of-1", OwnerID: "1", Name: "Emma", PriceCents: 500},
			"book-of-3": {ID: "book-of-3", OwnerID: "3", Name: "Ulysses", PriceCents: 900},
		},
	}
}

func (m *mockDirectory) GetUser(_ context.Context, id string) (user.User, error) {
	if m.userErr != nil {
		return user.User{}, m.userErr
	}
	u, ok := m.users[id]
	if !ok {
		return user.User{}, failure.NotFound("user")
	}
	return u, nil
}

func (m *mockDirectory) GetBook(_ context.Context, id string) (listing.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return listing.Book{}, failure.NotFound("book")
	}
	return b, nil
}

func (m *mockDirectory) SaveUser(_ context.Context, u user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockDirectory) SaveBook(_ context.Context, b listing.Book) error {
	m.books[b.ID] = b
	return nil
}

var errStoreDown = failure.Transient("message.append", errors.New("connection refused"))
