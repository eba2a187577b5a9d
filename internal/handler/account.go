package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/validation"
)

// AccountPage is the template data for the login and sign-up forms.
type AccountPage struct {
	BasePage
	Mode       string // "login" or "signup"
	Email      string
	Errors     map[string]string
	Error      string
	Redirect   string
	SSOEnabled bool
}

// AccountHandler serves email/password sign-in, sign-up and sign-out
// through the request's Gate.
type AccountHandler struct {
	sessions   *scs.SessionManager
	ssoEnabled bool
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(sm *scs.SessionManager, ssoEnabled bool) *AccountHandler {
	return &AccountHandler{sessions: sm, ssoEnabled: ssoEnabled}
}

// LoginPage renders GET /auth/login. Signed-in users go straight home.
func (h *AccountHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, "login")
}

// SignupPage renders GET /auth/signup.
func (h *AccountHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, "signup")
}

func (h *AccountHandler) show(w http.ResponseWriter, r *http.Request, mode string) {
	redirectTo := auth.SafeRedirect(r.URL.Query().Get("redirect"))
	if auth.PrincipalFromContext(r.Context()) != nil {
		http.Redirect(w, r, redirectTo, http.StatusFound)
		return
	}
	render(w, "account.html", h.page(r, mode, redirectTo))
}

func (h *AccountHandler) page(r *http.Request, mode, redirectTo string) AccountPage {
	return AccountPage{
		BasePage:   newBasePage(r, h.sessions),
		Mode:       mode,
		Redirect:   redirectTo,
		SSOEnabled: h.ssoEnabled,
	}
}

// Login handles POST /auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := validation.LoginForm{Email: r.FormValue("email"), Password: r.FormValue("password")}
	data := h.page(r, "login", auth.SafeRedirect(r.FormValue("redirect")))
	data.Email = form.Email

	if err := validation.Struct(form); err != nil {
		data.Errors = fieldErrors(err)
		renderStatus(w, http.StatusUnprocessableEntity, "account.html", data)
		return
	}
	if err := auth.GateFromContext(r.Context()).SignIn(r.Context(), form.Email, form.Password); err != nil {
		data.Error = auth.Classify(err).Message
		renderStatus(w, http.StatusUnauthorized, "account.html", data)
		return
	}
	setFlash(h.sessions, r, "success", "Logged in successfully.")
	redirect(w, r, data.Redirect)
}

// Signup handles POST /auth/signup.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := validation.SignupForm{
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	data := h.page(r, "signup", auth.SafeRedirect(r.FormValue("redirect")))
	data.Email = form.Email

	if err := validation.Struct(form); err != nil {
		data.Errors = fieldErrors(err)
		renderStatus(w, http.StatusUnprocessableEntity, "account.html", data)
		return
	}
	err := auth.GateFromContext(r.Context()).SignUp(r.Context(), form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		data.Error = auth.Classify(err).Message
		renderStatus(w, http.StatusUnprocessableEntity, "account.html", data)
		return
	}
	setFlash(h.sessions, r, "success", "Account created successfully.")
	redirect(w, r, data.Redirect)
}

// Logout handles POST /auth/logout.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if g := auth.GateFromContext(r.Context()); g != nil {
		if err := g.SignOut(r.Context()); err != nil {
			setFlash(h.sessions, r, "error", auth.Classify(err).Message)
			redirect(w, r, "/")
			return
		}
	}
	setFlash(h.sessions, r, "success", "Logged out successfully.")
	redirect(w, r, "/")
}
