package projections

import (
	"context"

	messageStore "bookswap/internal/adapters/storage/message"
	"bookswap/internal/application/listutil"
	"bookswap/internal/domain/failure"
	"bookswap/internal/domain/message"
)

// GetMessagesQuery carries input for the conversation history projection.
type GetMessagesQuery struct {
	ViewerID      string
	CounterpartID string
	Page          listutil.PageParams
}

// GetMessagesDeps holds dependencies for the conversation history projection.
type GetMessagesDeps struct {
	Messages MessageReader
}

// MessagesResult is one page of a conversation.
type MessagesResult struct {
	Messages []message.Message
	Page     listutil.PageInfo
}

// QueryGetMessages returns one page of the pair's history as the viewer sees it.
// Messages the viewer hid are skipped; the counterpart's hidden flags have no effect.
// PRE: Page built by listutil.NewPageParams or ParsePageParams
// POST: Ascending by (sent_at, id); the same page is returned again absent new writes
func QueryGetMessages(ctx context.Context, query GetMessagesQuery, deps GetMessagesDeps) (MessagesResult, error) {
	if query.ViewerID == "" {
		return MessagesResult{}, failure.Validation("viewer ID is required")
	}
	if query.CounterpartID == "" {
		return MessagesResult{}, failure.Validation("counterpart ID is required")
	}
	if query.ViewerID == query.CounterpartID {
		return MessagesResult{}, failure.Validation("viewer and counterpart must differ")
	}
	page, err := listutil.NewPageParams(query.Page.Page, query.Page.PageSize)
	if err != nil {
		return MessagesResult{}, err
	}

	total, err := deps.Messages.CountBetween(ctx, query.ViewerID, query.CounterpartID)
	if err != nil {
		return MessagesResult{}, err
	}
	msgs, err := deps.Messages.ListBetween(ctx, query.ViewerID, query.CounterpartID, messageStore.ListFilter{
		Limit:  page.PageSize,
		Offset: page.Offset(),
	})
	if err != nil {
		return MessagesResult{}, err
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return MessagesResult{
		Messages: msgs,
		Page:     listutil.NewPageInfo(page, total),
	}, nil
}
