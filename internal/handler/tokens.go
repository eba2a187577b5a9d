package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/store"
)

// TokensPage is the template data for the API token settings page.
type TokensPage struct {
	BasePage
	Tokens   []*auth.TokenRecord
	NewToken string // plaintext shown once after creation; empty otherwise
	Error    string
	Fragment bool // the flash is rendered inside the list on HTMX swaps
}

// TokensHandler provides web UI handlers for API token management.
type TokensHandler struct {
	tokens   auth.TokenStore
	sessions *scs.SessionManager
}

// NewTokensHandler creates a new TokensHandler.
func NewTokensHandler(ts auth.TokenStore, sm *scs.SessionManager) *TokensHandler {
	return &TokensHandler{tokens: ts, sessions: sm}
}

// Index renders GET /settings/tokens.
func (h *TokensHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, TokensPage{})
}

// Create processes the token creation form and shows the plaintext once.
func (h *TokensHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		h.renderPage(w, r, TokensPage{Error: "Token name is required."})
		return
	}

	var expiresAt *time.Time
	if exp := r.FormValue("expires_in"); exp != "" {
		d, err := time.ParseDuration(exp)
		if err != nil || d <= 0 {
			h.renderPage(w, r, TokensPage{Error: "Invalid expiry duration."})
			return
		}
		t := time.Now().Add(d)
		expiresAt = &t
	}

	plaintext, hash, err := auth.GenerateToken()
	if err != nil {
		h.renderPage(w, r, TokensPage{Error: "Failed to generate token."})
		return
	}
	userID := auth.GateFromContext(r.Context()).PrincipalID()
	if _, err := h.tokens.Create(r.Context(), userID, name, hash, expiresAt); err != nil {
		logger.Errorw("create api token", "user_id", userID, "error", err)
		h.renderPage(w, r, TokensPage{Error: "Failed to create token."})
		return
	}

	setFlash(h.sessions, r, "success", "Token created. Copy it now, it will not be shown again.")
	h.renderPage(w, r, TokensPage{NewToken: plaintext})
}

// Revoke soft-deletes a token owned by the current user.
func (h *TokensHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userID := auth.GateFromContext(r.Context()).PrincipalID()
	err := h.tokens.Revoke(r.Context(), chi.URLParam(r, "id"), userID)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "revoke failed", http.StatusInternalServerError)
		return
	}
	setFlash(h.sessions, r, "success", "Token revoked.")
	h.renderPage(w, r, TokensPage{})
}

func (h *TokensHandler) renderPage(w http.ResponseWriter, r *http.Request, data TokensPage) {
	data.BasePage = newBasePage(r, h.sessions)
	records, err := h.tokens.ListByUser(r.Context(), data.Session.Principal.ID)
	if err != nil && data.Error == "" {
		data.Error = "Could not load tokens."
	}
	data.Tokens = records

	if isHTMX(r) {
		data.Fragment = true
		renderFragment(w, "token_list", data)
		return
	}
	render(w, "tokens.html", data)
}
