package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/metrics"
)

const (
	cookieState        = "__auth_state"
	cookieCodeVerifier = "__auth_pkce"
	cookieRedirect     = "__auth_redirect"
)

// SSOHandlers serve the OIDC authorization code flow. The resulting session
// is indistinguishable from a LocalProvider sign-in.
type SSOHandlers struct {
	provider *OIDCProvider
	sessions *scs.SessionManager
	users    UserStore
	secure   bool
}

// NewSSOHandlers creates SSO handlers. p must not be nil.
func NewSSOHandlers(p *OIDCProvider, sm *scs.SessionManager, us UserStore, secure bool) *SSOHandlers {
	return &SSOHandlers{provider: p, sessions: sm, users: us, secure: secure}
}

// Login initiates the OIDC authorization code flow with PKCE.
func (h *SSOHandlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := GenerateState()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.setPreAuthCookie(w, cookieState, state)
	h.setPreAuthCookie(w, cookieCodeVerifier, verifier)
	h.setPreAuthCookie(w, cookieRedirect, SafeRedirect(r.URL.Query().Get("redirect")))

	http.Redirect(w, r, h.provider.AuthCodeURL(state, challenge), http.StatusFound)
}

// Callback handles the OIDC provider redirect after authentication.
func (h *SSOHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(cookieState)
	if err != nil || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	verifierCookie, err := r.Cookie(cookieCodeVerifier)
	if err != nil {
		http.Error(w, "missing code verifier", http.StatusBadRequest)
		return
	}

	idToken, err := h.provider.Exchange(r.Context(), r.URL.Query().Get("code"), verifierCookie.Value)
	if err != nil {
		logger.Warnw("oidc exchange failed", "error", err)
		metrics.AuthEventsTotal.WithLabelValues("sso.failed").Inc()
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		http.Error(w, "invalid claims", http.StatusUnauthorized)
		return
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		http.Error(w, "email not verified", http.StatusUnauthorized)
		return
	}

	user, err := h.users.UpsertByEmail(r.Context(), claims.Email, claims.Name, h.provider.issuer)
	if err != nil {
		logger.Errorw("oidc user upsert failed", "error", err)
		http.Error(w, "user record error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	h.sessions.Put(r.Context(), SessionUserIDKey, user.ID)
	metrics.AuthEventsTotal.WithLabelValues("sso.ok").Inc()

	clearCookie(w, cookieState)
	clearCookie(w, cookieCodeVerifier)

	redirect := "/"
	if c, err := r.Cookie(cookieRedirect); err == nil {
		redirect = SafeRedirect(c.Value)
	}
	clearCookie(w, cookieRedirect)

	http.Redirect(w, r, redirect, http.StatusFound)
}

// SafeRedirect returns target when it is a local path, otherwise "/".
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func (h *SSOHandlers) setPreAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   300, // 5 minutes
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:    name,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
}
