package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/joestump/affilinks/internal/logger"
)

// BearerTokenMiddleware authenticates API requests via Bearer token.
// Session cookies are ignored on API routes; only API tokens count.
type BearerTokenMiddleware struct {
	tokens TokenStore
	users  UserStore
	admins AdminSet
}

// NewBearerTokenMiddleware creates a new BearerTokenMiddleware.
func NewBearerTokenMiddleware(ts TokenStore, us UserStore, admins AdminSet) *BearerTokenMiddleware {
	return &BearerTokenMiddleware{tokens: ts, users: us, admins: admins}
}

// Authenticate requires a valid Bearer token.
// WHEN valid: stores an Authenticated Gate for the token owner and fires an async last_used_at update.
// WHEN invalid/missing/expired/revoked: returns 401 with {"error": "unauthorized"}.
func (m *BearerTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, ok := m.resolve(r)
		if !ok || g.Principal() == nil {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithGate(r.Context(), g)))
	})
}

// Optional authenticates when an Authorization header is present and
// otherwise continues with an Anonymous Gate. A bad token is still a 401.
func (m *BearerTokenMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			g := NewGate(nil, m.admins)
			_ = g.Start(r.Context())
			next.ServeHTTP(w, r.WithContext(WithGate(r.Context(), g)))
			return
		}
		m.Authenticate(next).ServeHTTP(w, r)
	})
}

func (m *BearerTokenMiddleware) resolve(r *http.Request) (*Gate, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	plaintext := strings.TrimPrefix(authHeader, "Bearer ")
	if plaintext == "" {
		return nil, false
	}

	rec, err := m.tokens.GetByHash(r.Context(), HashToken(plaintext))
	if err != nil || !rec.Active(time.Now()) {
		return nil, false
	}

	user, err := m.users.GetByID(r.Context(), rec.UserID)
	if err != nil {
		return nil, false
	}

	// last_used_at is best effort and must not slow the request down.
	go func(id string) {
		if err := m.tokens.UpdateLastUsed(context.Background(), id); err != nil {
			logger.Debugw("token last_used_at update failed", "token_id", id, "error", err)
		}
	}(rec.ID)

	g := NewGate(StaticProvider{P: PrincipalFromUser(user)}, m.admins)
	if err := g.Start(r.Context()); err != nil {
		return nil, false
	}
	return g, true
}

// writeUnauthorized writes a 401 JSON response with {"error": "unauthorized"}.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "code": "UNAUTHORIZED"})
}
