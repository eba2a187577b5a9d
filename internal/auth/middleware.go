package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/joestump/affilinks/internal/logger"
)

type contextKey string

const gateContextKey contextKey = "gate"

// Middleware attaches a started Gate to every request.
type Middleware struct {
	provider IdentityProvider
	admins   AdminSet
}

// NewMiddleware creates a new auth Middleware. The session manager's
// LoadAndSave must run before Gate so the provider can read the session.
func NewMiddleware(p IdentityProvider, admins AdminSet) *Middleware {
	return &Middleware{provider: p, admins: admins}
}

// Gate builds a per-request Gate, resolves the principal and stores the
// Gate on the request context. Resolution failures leave it Anonymous.
func (m *Middleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := NewGate(m.provider, m.admins)
		if err := g.Start(r.Context()); err != nil {
			logger.Warnw("resolve session principal", "error", err, "path", r.URL.Path)
		}
		next.ServeHTTP(w, r.WithContext(WithGate(r.Context(), g)))
	})
}

// RequireAuth redirects to /auth/login if the request is not authenticated.
// Must be used after Gate.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/auth/login?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects non-administrators with 403. Must be used after Gate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g := GateFromContext(r.Context())
		if g == nil || !g.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithGate returns a copy of ctx carrying g.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, gateContextKey, g)
}

// GateFromContext returns the request's Gate, or nil outside Gate middleware.
func GateFromContext(ctx context.Context) *Gate {
	g, _ := ctx.Value(gateContextKey).(*Gate)
	return g
}

// PrincipalFromContext returns the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	if g := GateFromContext(ctx); g != nil {
		return g.Principal()
	}
	return nil
}
