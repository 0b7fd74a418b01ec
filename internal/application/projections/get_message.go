package projections

import (
	"context"

	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/message"
)

// ErrNotParticipant rejects reading another pair's message.
var ErrNotParticipant = failure.Permission("not a participant in this conversation")

// GetMessageQuery carries input for the single message projection.
type GetMessageQuery struct {
	ViewerID  string
	MessageID int64
}

// GetMessageDeps holds dependencies for the single message projection.
type GetMessageDeps struct {
	Messages MessageReader
}

// QueryGetMessage returns one message if the viewer took part and has not hidden it.
// PRE: ViewerID is the authenticated viewer
// POST: Permission failure for non-participants; not found if missing or hidden for the viewer
func QueryGetMessage(ctx context.Context, query GetMessageQuery, deps GetMessageDeps) (message.Message, error) {
	if query.MessageID <= 0 {
		return message.Message{}, failure.Validation("message ID must be positive")
	}
	m, err := deps.Messages.GetByID(ctx, query.MessageID)
	if err != nil {
		return message.Message{}, err
	}
	if !m.Involves(query.ViewerID) {
		return message.Message{}, ErrNotParticipant
	}
	if m.IsHiddenFor(query.ViewerID) {
		return message.Message{}, failure.NotFound("message")
	}
	return m, nil
}
