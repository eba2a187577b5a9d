package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
)

const (
	flashTypeKey    = "flash_type"
	flashMessageKey = "flash_message"
)

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// setFlash stores a message for the next rendered page.
func setFlash(sm *scs.SessionManager, r *http.Request, typ, msg string) {
	sm.Put(r.Context(), flashTypeKey, typ)
	sm.Put(r.Context(), flashMessageKey, msg)
}

func popFlash(sm *scs.SessionManager, r *http.Request) *Flash {
	msg := sm.PopString(r.Context(), flashMessageKey)
	typ := sm.PopString(r.Context(), flashTypeKey)
	if msg == "" {
		return nil
	}
	return &Flash{Type: typ, Message: msg}
}
