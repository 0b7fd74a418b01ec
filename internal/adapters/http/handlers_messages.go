package web

import (
	"net/http"

	"bookswap/internal/application/listutil"
	"bookswap/internal/application/orchestrators"
	"bookswap/internal/application/projections"
)

// handleSendMessage handles POST /api/messages
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var input struct {
		BookID string `json:"book_id"`
		Body   string `json:"body"`
	}
	if err := strictDecode(w, r, &input, false); err != nil {
		writeError(w, err)
		return
	}

	res, err := orchestrators.ExecuteSendMessage(r.Context(), orchestrators.SendMessageInput{
		SenderID: viewerID(r),
		BookID:   input.BookID,
		Body:     input.Body,
	}, orchestrators.SendMessageDeps{
		Messages: s.stores.Messages,
		Blocks:   s.stores.Blocks,
		Books:    s.stores.Directory,
		Users:    s.stores.Directory,
		Now:      s.now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSendMessageView(res))
}

// handleGetMessage handles GET /api/messages/{id}
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	msg, err := projections.QueryGetMessage(r.Context(), projections.GetMessageQuery{
		ViewerID:  viewerID(r),
		MessageID: id,
	}, projections.GetMessageDeps{Messages: s.stores.Messages})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMessageView(msg))
}

// handleListConversations handles GET /api/conversations
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryGetConversations(r.Context(), projections.GetConversationsQuery{
		ViewerID: viewerID(r),
	}, projections.GetConversationsDeps{
		Messages: s.stores.Messages,
		Blocks:   s.stores.Blocks,
		Users:    s.stores.Directory,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newConversationViews(list))
}

// handleListMessages handles GET /api/conversations/{counterpartID}/messages
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	page, err := listutil.ParsePageParams(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := projections.QueryGetMessages(r.Context(), projections.GetMessagesQuery{
		ViewerID:      viewerID(r),
		CounterpartID: r.PathValue("counterpartID"),
		Page:          page,
	}, projections.GetMessagesDeps{Messages: s.stores.Messages})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesPageView{
		Messages: newMessageViews(res.Messages),
		Page:     res.Page,
	})
}

// handleMarkRead handles POST /api/conversations/{counterpartID}/read
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := orchestrators.ExecuteMarkRead(r.Context(), orchestrators.MarkReadInput{
		ViewerID:      viewerID(r),
		CounterpartID: r.PathValue("counterpartID"),
	}, orchestrators.MarkReadDeps{Messages: s.stores.Messages, Now: s.now})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked_read": n})
}

// handleHideConversation handles POST /api/conversations/{counterpartID}/hide
func (s *Server) handleHideConversation(w http.ResponseWriter, r *http.Request) {
	n, err := orchestrators.ExecuteHideConversation(r.Context(), orchestrators.HideConversationInput{
		ViewerID:      viewerID(r),
		CounterpartID: r.PathValue("counterpartID"),
	}, orchestrators.HideConversationDeps{Messages: s.stores.Messages})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"hidden": n})
}

// handleUnreadCount handles GET /api/unread-count[?counterpart_id=]
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	counterpartID := r.URL.Query().Get("counterpart_id")
	n, err := projections.QueryGetUnreadCount(r.Context(), projections.GetUnreadCountQuery{
		ViewerID:      viewerID(r),
		CounterpartID: counterpartID,
	}, projections.GetUnreadCountDeps{Messages: s.stores.Messages})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, unreadCountView{CounterpartID: counterpartID, UnreadCount: n})
}
