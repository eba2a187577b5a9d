// Package store holds the sqlx-backed persistence for affiliate links, users,
// and API tokens. Handlers never query the database directly.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the store has no database connection.
	ErrUnavailable = errors.New("store unavailable")

	// ErrPermissionDenied is returned when the database rejects a statement
	// for lack of privileges (read-only file, revoked grants).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")
)

// LinkStoreIface exposes the affiliate-link collection to the links
// repository. It is the seam tests replace with an in-memory fake.
type LinkStoreIface interface {
	Available() bool
	List(ctx context.Context) ([]*AffiliateLink, error)
	GetByID(ctx context.Context, id string) (*AffiliateLink, error)
	Insert(ctx context.Context, l *AffiliateLink) error
	Update(ctx context.Context, id string, patch LinkPatch) error
	Delete(ctx context.Context, id string) error
}

// translateError maps driver errors onto the store sentinels. Message
// matching is the only portable option across SQLite, PostgreSQL and MySQL.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"), // PostgreSQL
		strings.Contains(msg, "command denied"), // MySQL
		strings.Contains(msg, "access denied"), // MySQL
		strings.Contains(msg, "readonly database"), // SQLite
		strings.Contains(msg, "read-only"):
		return &wrapped{sentinel: ErrPermissionDenied, cause: err}
	case isUniqueConstraintError(err):
		return &wrapped{sentinel: ErrDuplicate, cause: err}
	case strings.Contains(msg, "database is closed"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "bad connection"):
		return &wrapped{sentinel: ErrUnavailable, cause: err}
	}
	return err
}

// wrapped keeps the driver message while matching a sentinel with errors.Is.
type wrapped struct {
	sentinel error
	cause    error
}

func (w *wrapped) Error() string { return w.sentinel.Error() + ": " + w.cause.Error() }

func (w *wrapped) Is(target error) bool { return target == w.sentinel }

func (w *wrapped) Unwrap() error { return w.cause }

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
