package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"bookswap/internal/adapters/http/middleware"
	"bookswap/internal/domain/failure"
)

// maxRequestBody caps JSON request bodies. A 4000 character body is at
// most 16000 bytes of UTF-8 before escaping.
const maxRequestBody = 64 << 10

// retryAfterSeconds is advertised on transient failures.
const retryAfterSeconds = "1"

// statusByKind maps failure kinds to HTTP status codes.
var statusByKind = map[failure.Kind]int{
	failure.KindValidation: http.StatusBadRequest,
	failure.KindNotFound:   http.StatusNotFound,
	failure.KindPermission: http.StatusForbidden,
	failure.KindTransient:  http.StatusServiceUnavailable,
}

// errorView is the JSON body of every error response.
type errorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// writeError maps a failure to its status and JSON body.
// Errors outside the taxonomy go through internalError.
func writeError(w http.ResponseWriter, err error) {
	kind := failure.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		internalError(w, err)
		return
	}
	if kind == failure.KindTransient {
		slog.Warn("transient_error", "error", err.Error())
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeJSON(w, status, errorView{Kind: string(kind), Message: failure.MessageOf(err)})
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorView{
		Kind:    string(failure.KindInternal),
		Message: "internal server error",
	})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
// An empty body is accepted when allowEmpty is set.
func strictDecode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return failure.Validation("request body too large")
	}
	return failure.Validation("invalid JSON")
}

// viewerID returns the authenticated viewer. RequireViewer guarantees presence.
func viewerID(r *http.Request) string {
	id, _ := middleware.ViewerFromContext(r.Context())
	return id
}

// pathInt64 parses a numeric path parameter.
func pathInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, failure.Validation(name + " must be a positive integer")
	}
	return v, nil
}
