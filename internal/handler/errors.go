package handler

import (
	"errors"

	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/logger"
)

// linkErrorMessage turns a repository failure into the sentence shown in
// the flash area. The cause goes to the log, never to the page.
func linkErrorMessage(err error) string {
	op := ""
	var le *links.Error
	if errors.As(err, &le) {
		op = le.Op
	}
	logLinkError(err, "op", op)

	switch links.KindOf(err) {
	case links.Unauthenticated:
		return "You must be logged in to add links."
	case links.Forbidden:
		if errors.Is(err, links.ErrDefaultLink) {
			if op == "delete" {
				return "Default links cannot be deleted."
			}
			return "Default links cannot be modified."
		}
		if op == "delete" {
			return "You do not have permission to delete links."
		}
		return "You do not have permission to update links."
	case links.NotFound:
		return "That link no longer exists."
	case links.StoreUnavailable:
		return "Cannot connect to the database. Please check configuration or try again later."
	}

	switch op {
	case "list":
		return "Failed to load links. Please try again."
	case "update":
		return "Failed to update link: An unexpected server error occurred."
	case "delete":
		return "Failed to delete link: An unexpected server error occurred."
	default:
		return "Failed to add link: An unexpected server error occurred."
	}
}

// logLinkError logs the cause of a repository failure. Seed-guard
// rejections are ordinary user mistakes and are skipped.
func logLinkError(err error, kv ...any) {
	if errors.Is(err, links.ErrDefaultLink) {
		return
	}
	kind := links.KindOf(err)
	kv = append(kv, "kind", kind.String(), "error", err)
	if kind == links.Unexpected {
		logger.Errorw("link operation failed", kv...)
		return
	}
	logger.Warnw("link operation failed", kv...)
}
