package projections

import (
	"context"
	"sort"
	"time"

	messageStore "bookswap/internal/adapters/storage/message"
	"bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/message"
	"bookswap/internal/domain/user"
)

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// mockMessages implements MessageReader, UnreadCounter and ConversationSource
// over a slice, applying the same visibility rules as the real stores.
type mockMessages struct {
	messages []message.Message
}

func (m *mockMessages) add(from, to, body string, at time.Time) int64 {
	id := int64(len(m.messages) + 1)
	m.messages = append(m.messages, message.Message{ID: id, SenderID: from, ReceiverID: to, Body: body, SentAt: at})
	return id
}

func (m *mockMessages) pair(viewerID, counterpartID string) []message.Message {
	var out []message.Message
	for _, msg := range m.messages {
		if msg.Involves(viewerID) && msg.CounterpartOf(viewerID) == counterpartID && !msg.IsHiddenFor(viewerID) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.Before(out[j].SentAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *mockMessages) GetByID(_ context.Context, id int64) (message.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return message.Message{}, failure.NotFound("message")
}

func (m *mockMessages) ListBetween(_ context.Context, viewerID, counterpartID string, filter messageStore.ListFilter) ([]message.Message, error) {
	all := m.pair(viewerID, counterpartID)
	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (m *mockMessages) CountBetween(_ context.Context, viewerID, counterpartID string) (int, error) {
	return len(m.pair(viewerID, counterpartID)), nil
}

func (m *mockMessages) unreadFrom(viewerID string) map[string]int {
	counts := make(map[string]int)
	for _, msg := range m.messages {
		if msg.ReceiverID == viewerID && !msg.IsRead() && !msg.HiddenForReceiver {
			counts[msg.SenderID]++
		}
	}
	return counts
}

func (m *mockMessages) CountUnread(_ context.Context, viewerID string) (int, error) {
	total := 0
	for _, n := range m.unreadFrom(viewerID) {
		total += n
	}
	return total, nil
}

func (m *mockMessages) CountUnreadFrom(_ context.Context, viewerID, counterpartID string) (int, error) {
	return m.unreadFrom(viewerID)[counterpartID], nil
}

func (m *mockMessages) CountUnreadByCounterpart(_ context.Context, viewerID string) (map[string]int, error) {
	return m.unreadFrom(viewerID), nil
}

func (m *mockMessages) ListLatestPerCounterpart(_ context.Context, viewerID string) ([]message.Message, error) {
	latest := make(map[string]message.Message)
	for _, msg := range m.messages {
		if !msg.Involves(viewerID) || msg.IsHiddenFor(viewerID) {
			continue
		}
		cp := msg.CounterpartOf(viewerID)
		cur, ok := latest[cp]
		if !ok || msg.SentAt.After(cur.SentAt) || (msg.SentAt.Equal(cur.SentAt) && msg.ID > cur.ID) {
			latest[cp] = msg
		}
	}
	out := make([]message.Message, 0, len(latest))
	for _, msg := range latest {
		out = append(out, msg)
	}
	message.SortNewestFirst(out)
	return out, nil
}

// mockBlocks implements BlockStatusReader and BlockLister.
type mockBlocks struct {
	rels []block.Relationship
	err  error
}

func (m *mockBlocks) Status(_ context.Context, a, b string) (block.Status, error) {
	if m.err != nil {
		return block.Status{}, m.err
	}
	var st block.Status
	for _, r := range m.rels {
		if r.BlockerID == a && r.BlockedID == b {
			st.ABlocksB = true
		}
		if r.BlockerID == b && r.BlockedID == a {
			st.BBlocksA = true
		}
	}
	return st, nil
}

func (m *mockBlocks) ListBlockedBy(_ context.Context, blockerID string) ([]block.Relationship, error) {
	var out []block.Relationship
	for _, r := range m.rels {
		if r.BlockerID == blockerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// mockUsers implements UserNames.
type mockUsers map[string]string

func (m mockUsers) GetUsers(_ context.Context, ids []string) (map[string]user.User, error) {
	out := make(map[string]user.User)
	for _, id := range ids {
		if name, ok := m[id]; ok {
			out[id] = user.User{ID: id, DisplayName: name}
		}
	}
	return out, nil
}

var testUsers = mockUsers{"1": "Ana", "2": "Ben", "3": "Cy"}
