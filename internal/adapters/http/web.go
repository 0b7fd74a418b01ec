package web

import (
	"context"
	"net/http"
	"time"

	"bookswap/internal/adapters/http/middleware"
	"bookswap/internal/adapters/http/perf"
	blockStore "bookswap/internal/adapters/storage/block"
	directoryStore "bookswap/internal/adapters/storage/directory"
	messageStore "bookswap/internal/adapters/storage/message"
)

// Stores holds all storage dependencies.
type Stores struct {
	Messages  messageStore.Store
	Blocks    blockStore.Store
	Directory directoryStore.Store
}

// Options tunes the HTTP surface. Zero values pick the defaults below.
type Options struct {
	// StoreTimeout bounds each request, and with it every store call.
	StoreTimeout time.Duration
	// SlowRequest is the WARN threshold for request timing.
	SlowRequest time.Duration
	// RateLimitPerSecond is the per-IP budget; 0 disables rate limiting.
	RateLimitPerSecond int
	// PerfEndpoint exposes GET /debug/perf.
	PerfEndpoint bool
	// Ping checks the database for /healthz. Nil reports healthy.
	Ping func(ctx context.Context) error
	// Now overrides the clock in tests.
	Now func() time.Time
}

// DefaultStoreTimeout applies when Options.StoreTimeout is unset.
const DefaultStoreTimeout = 5 * time.Second

// Server carries every handler dependency explicitly.
type Server struct {
	stores    Stores
	opts      Options
	collector *perf.Collector
	limiter   *middleware.RateLimiter
	now       func() time.Time
}

// NewServer builds a server over stores. collector may be nil.
// Call Close when done to stop the rate limiter's cleanup goroutine.
func NewServer(stores Stores, collector *perf.Collector, opts Options) *Server {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	s := &Server{
		stores:    stores,
		opts:      opts,
		collector: collector,
		now:       opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.RateLimitPerSecond > 0 {
		s.limiter = middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)
	}
	return s
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Handler returns the routed, middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Messaging
	mux.Handle("POST /api/messages", s.api(s.handleSendMessage))
	mux.Handle("GET /api/messages/{id}", s.api(s.handleGetMessage))
	mux.Handle("GET /api/conversations", s.api(s.handleListConversations))
	mux.Handle("GET /api/conversations/{counterpartID}/messages", s.api(s.handleListMessages))
	mux.Handle("POST /api/conversations/{counterpartID}/read", s.api(s.handleMarkRead))
	mux.Handle("POST /api/conversations/{counterpartID}/hide", s.api(s.handleHideConversation))
	mux.Handle("GET /api/unread-count", s.api(s.handleUnreadCount))

	// Blocking
	mux.Handle("GET /api/blocks", s.api(s.handleListBlocks))
	mux.Handle("PUT /api/blocks/{targetID}", s.api(s.handleBlock))
	mux.Handle("DELETE /api/blocks/{targetID}", s.api(s.handleUnblock))
	mux.Handle("GET /api/blocks/{targetID}/status", s.api(s.handleBlockStatus))

	// Operations
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.opts.PerfEndpoint {
		mux.HandleFunc("GET /debug/perf", s.handlePerf)
	}

	// Timing wraps the mux directly so entries carry the matched pattern.
	chain := []func(http.Handler) http.Handler{
		middleware.Timing(s.collector, s.opts.SlowRequest),
		middleware.Deadline(s.opts.StoreTimeout),
	}
	if s.limiter != nil {
		chain = append(chain, middleware.RateLimit(s.limiter))
	}
	chain = append(chain, middleware.Identity, middleware.SecurityHeaders)
	return middleware.Chain(mux, chain...)
}

// api guards a handler that acts on behalf of the viewer.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	return middleware.RequireViewer(h)
}
