package conversation

import (
	"sort"
	"time"

	"bookswap/internal/domain/block"
	"bookswap/internal/domain/message"
)

// Summary is the derived, non-stored chat-list row for one
// (viewer, counterpart) pair.
type Summary struct {
	CounterpartID           string
	CounterpartName         string
	LastMessageID           int64
	LastMessageBody         string
	LastMessageTime         time.Time
	LastMessageFromViewer   bool
	UnreadCount             int
	ViewerBlocksCounterpart bool
	CounterpartBlocksViewer bool
}

// NewSummary builds a summary from the latest visible message of a pair.
// PRE: last.Involves(viewerID)
// POST: Block flags follow status where A is the viewer and B the counterpart
func NewSummary(viewerID string, last message.Message, unread int, status block.Status) Summary {
	return Summary{
		CounterpartID:           last.CounterpartOf(viewerID),
		LastMessageID:           last.ID,
		LastMessageBody:         last.Body,
		LastMessageTime:         last.SentAt,
		LastMessageFromViewer:   last.SenderID == viewerID,
		UnreadCount:             unread,
		ViewerBlocksCounterpart: status.ABlocksB,
		CounterpartBlocksViewer: status.BBlocksA,
	}
}

// SortByRecent orders summaries by last message time, newest first.
// Equal times fall back to the higher message ID so the order is total.
func SortByRecent(list []Summary) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].LastMessageTime.Equal(list[j].LastMessageTime) {
			return list[i].LastMessageTime.After(list[j].LastMessageTime)
		}
		return list[i].LastMessageID > list[j].LastMessageID
	})
}
