package links

import (
	"errors"
	"fmt"
)

// Kind classifies a repository failure. Callers map a Kind to one
// user-facing sentence; the wrapped cause is kept for logs.
type Kind int

const (
	Unexpected Kind = iota
	StoreUnavailable
	Unauthenticated
	Forbidden
	NotFound
)

func (k Kind) String() string {
	switch k {
	case StoreUnavailable:
		return "store unavailable"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	default:
		return "unexpected"
	}
}

// ErrDefaultLink is the cause attached to Forbidden errors raised by the
// seed guard. errors.Is tells it apart from a store-level permission denial.
var ErrDefaultLink = errors.New("default links cannot be modified")

// ErrNoPrincipal is the cause of Unauthenticated errors.
var ErrNoPrincipal = errors.New("user must be logged in")

// Error is returned by every Repository operation that fails.
type Error struct {
	Op   string // "list", "get", "create", "update", "delete"
	ID   string // link id, empty for list and create
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	target := e.Op
	if e.ID != "" {
		target += " " + e.ID
	}
	if e.Err == nil {
		return fmt.Sprintf("links: %s: %s", target, e.Kind)
	}
	return fmt.Sprintf("links: %s: %s: %v", target, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or Unexpected when err is not a *Error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return Unexpected
}

// IsKind reports whether err is a repository error of kind k.
func IsKind(err error, k Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}
