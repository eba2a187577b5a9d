package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/validation"
)

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeValidationError reports every failed field of a request body.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  verrs.First(),
			Code:   "VALIDATION_ERROR",
			Fields: verrs.ByField(),
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
}

// writeLinkError maps a repository failure to a status and one sentence.
// The cause is logged, never sent.
func writeLinkError(w http.ResponseWriter, r *http.Request, err error) {
	kind := links.KindOf(err)
	switch {
	case errors.Is(err, links.ErrDefaultLink):
	case kind == links.Unexpected:
		logger.Errorw("api: link operation failed", "error", err, "method", r.Method, "path", r.URL.Path)
	default:
		logger.Warnw("api: link operation failed", "kind", kind.String(), "error", err, "method", r.Method, "path", r.URL.Path)
	}

	switch kind {
	case links.Unauthenticated:
		writeError(w, http.StatusUnauthorized, "You must be logged in to do that.", "UNAUTHORIZED")
	case links.Forbidden:
		if errors.Is(err, links.ErrDefaultLink) {
			writeError(w, http.StatusForbidden, "Default links cannot be modified or deleted.", "DEFAULT_LINK")
			return
		}
		writeError(w, http.StatusForbidden, "You do not have permission to do that.", "FORBIDDEN")
	case links.NotFound:
		writeError(w, http.StatusNotFound, "That link no longer exists.", "NOT_FOUND")
	case links.StoreUnavailable:
		writeError(w, http.StatusServiceUnavailable, "Link storage is not available right now.", "STORE_UNAVAILABLE")
	default:
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.", "INTERNAL_ERROR")
	}
}
