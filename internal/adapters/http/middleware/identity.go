package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const viewerContextKey contextKey = "viewer"

// ViewerHeader carries the authenticated user ID set by the upstream identity gateway.
const ViewerHeader = "X-User-ID"

// maxViewerIDLength bounds the header value accepted as an identity.
const maxViewerIDLength = 128

// Identity returns middleware that places the viewer from ViewerHeader in the
// request context. It does NOT block anonymous requests; use RequireViewer for that.
// Malformed identities are dropped, leaving the request anonymous.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := parseViewerID(r.Header.Get(ViewerHeader)); ok {
			r = r.WithContext(ContextWithViewer(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireViewer blocks requests that carry no viewer identity.
func RequireViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ViewerFromContext(r.Context()); !ok {
			writeRejection(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid "+ViewerHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ViewerFromContext extracts the viewer ID from the request context.
func ViewerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(viewerContextKey).(string)
	return id, ok && id != ""
}

// ContextWithViewer returns a context carrying viewerID.
func ContextWithViewer(ctx context.Context, viewerID string) context.Context {
	return context.WithValue(ctx, viewerContextKey, viewerID)
}

// parseViewerID accepts a trimmed, printable ID of bounded length.
func parseViewerID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxViewerIDLength {
		return "", false
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "", false
		}
	}
	return id, true
}
