package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// perfTopN bounds the slowest-path lists in the perf snapshot.
const perfTopN = 10

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ping != nil {
		if err := s.opts.Ping(r.Context()); err != nil {
			slog.Warn("health_check_failed", "error", err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf handles GET /debug/perf?minutes=N
// Returns request and query timing aggregated over the last N minutes (default 15).
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeJSON(w, http.StatusNotFound, errorView{Kind: "not_found", Message: "perf collection disabled"})
		return
	}
	minutes := 15
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 24*60 {
			writeJSON(w, http.StatusBadRequest, errorView{Kind: "validation", Message: "minutes must be between 1 and 1440"})
			return
		}
		minutes = n
	}
	since := time.Now().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, s.collector.Snapshot(since, perfTopN))
}
