package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"bookswap/internal/adapters/http/middleware"
	"bookswap/internal/adapters/http/perf"
	"bookswap/internal/adapters/storage"
	blockStore "bookswap/internal/adapters/storage/block"
	directoryStore "bookswap/internal/adapters/storage/directory"
	messageStore "bookswap/internal/adapters/storage/message"
	"bookswap/internal/domain/listing"
	"bookswap/internal/domain/user"
)

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// stepClock advances one second per call so every write gets a distinct time.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	handler   http.Handler
	collector *perf.Collector
}

// newTestEnv wires the real mux over a temp-file SQLite database holding
// users 1, 2 and 3, with book-of-1 owned by 1 and book-of-2 owned by 2.
// tweaks adjust the server options before the handler is built.
func newTestEnv(t *testing.T, tweaks ...func(*Options)) *testEnv {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web.db"), 5000, 4)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	collector := perf.NewCollector(256)
	timed := storage.NewTimedDB(db, collector, 0)
	dir := directoryStore.NewSQLiteStore(timed)

	ctx := context.Background()
	for _, u := range []user.User{
		{ID: "1", DisplayName: "Ana", CreatedAt: baseTime},
		{ID: "2", DisplayName: "Ben", CreatedAt: baseTime},
		{ID: "3", DisplayName: "Cleo", CreatedAt: baseTime},
	} {
		if err := dir.SaveUser(ctx, u); err != nil {
			t.Fatalf("SaveUser: %v", err)
		}
	}
	for _, b := range []listing.Book{
		{ID: "book-of-1", OwnerID: "1", Name: "Dune", PriceCents: 800},
		{ID: "book-of-2", OwnerID: "2", Name: "Emma", PriceCents: 450},
	} {
		if err := dir.SaveBook(ctx, b); err != nil {
			t.Fatalf("SaveBook: %v", err)
		}
	}

	clock := &stepClock{now: baseTime}
	opts := Options{
		StoreTimeout: 5 * time.Second,
		PerfEndpoint: true,
		Ping:         timed.PingContext,
		Now:          clock.Now,
	}
	for _, tweak := range tweaks {
		tweak(&opts)
	}
	srv := NewServer(Stores{
		Messages:  messageStore.NewSQLiteStore(timed),
		Blocks:    blockStore.NewSQLiteStore(timed),
		Directory: dir,
	}, collector, opts)
	t.Cleanup(srv.Close)
	return &testEnv{handler: srv.Handler(), collector: collector}
}

// do issues a request as viewer; an empty viewer sends no identity header.
func (e *testEnv) do(t *testing.T, method, path, viewer, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if viewer != "" {
		req.Header.Set(middleware.ViewerHeader, viewer)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// send posts a message and fails the test unless it is created.
func (e *testEnv) send(t *testing.T, viewer, bookID, body string) messageView {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"book_id": bookID, "body": body})
	rr := e.do(t, "POST", "/api/messages", viewer, string(payload))
	if rr.Code != http.StatusCreated {
		t.Fatalf("send %s -> %s: status = %d, body = %s", viewer, bookID, rr.Code, rr.Body.String())
	}
	return decode[sendMessageView](t, rr).Message
}

func (e *testEnv) conversations(t *testing.T, viewer string) []conversationView {
	t.Helper()
	rr := e.do(t, "GET", "/api/conversations", viewer, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("conversations(%s): status = %d, body = %s", viewer, rr.Code, rr.Body.String())
	}
	return decode[[]conversationView](t, rr)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body %s)", v, err, rr.Body.String())
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, kind string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	got := decode[errorView](t, rr)
	if got.Kind != kind {
		t.Errorf("kind = %q, want %q", got.Kind, kind)
	}
	if got.Message == "" {
		t.Error("error message should not be empty")
	}
}
