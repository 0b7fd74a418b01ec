package web

import (
	"net/http"

	"bookswap/internal/application/orchestrators"
	"bookswap/internal/application/projections"
)

// handleListBlocks handles GET /api/blocks
func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryGetBlockedUsers(r.Context(), projections.GetBlockedUsersQuery{
		ViewerID: viewerID(r),
	}, projections.GetBlockedUsersDeps{Blocks: s.stores.Blocks, Users: s.stores.Directory})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBlockedUserViews(list))
}

// handleBlock handles PUT /api/blocks/{targetID}
// Responds 201 when the block is new and 200 when it already existed.
func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Reason string `json:"reason"`
	}
	if err := strictDecode(w, r, &input, true); err != nil {
		writeError(w, err)
		return
	}

	rel, created, err := orchestrators.ExecuteBlockUser(r.Context(), orchestrators.BlockUserInput{
		ViewerID: viewerID(r),
		TargetID: r.PathValue("targetID"),
		Reason:   input.Reason,
	}, orchestrators.BlockUserDeps{
		Blocks: s.stores.Blocks,
		Users:  s.stores.Directory,
		Now:    s.now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, newBlockView(rel))
}

// handleUnblock handles DELETE /api/blocks/{targetID}
func (s *Server) handleUnblock(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteUnblockUser(r.Context(), orchestrators.UnblockUserInput{
		ViewerID: viewerID(r),
		TargetID: r.PathValue("targetID"),
	}, orchestrators.UnblockUserDeps{Blocks: s.stores.Blocks})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBlockStatus handles GET /api/blocks/{targetID}/status
func (s *Server) handleBlockStatus(w http.ResponseWriter, r *http.Request) {
	st, err := projections.QueryGetBlockStatus(r.Context(), projections.GetBlockStatusQuery{
		ViewerID: viewerID(r),
		TargetID: r.PathValue("targetID"),
	}, projections.GetBlockStatusDeps{Blocks: s.stores.Blocks})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blockStatusView{
		ViewerBlocksTarget: st.ABlocksB,
		TargetBlocksViewer: st.BBlocksA,
	})
}
