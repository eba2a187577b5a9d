package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestump/affilinks/internal/api"
	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/llm"
	"github.com/joestump/affilinks/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthMiddleware *auth.Middleware
	SSOHandlers    *auth.SSOHandlers // nil when SSO is not configured
	BearerAuth     *auth.BearerTokenMiddleware
	Links          *links.Repository
	TokenStore     auth.TokenStore
	Describer      llm.Describer // nil when no LLM provider is configured
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(deps.SessionManager.LoadAndSave)

	// Use fs.Sub so the file server sees css/app.css directly.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api/v1", api.NewAPIRouter(api.Deps{
		BearerAuth: deps.BearerAuth,
		Links:      deps.Links,
		TokenStore: deps.TokenStore,
		Describer:  deps.Describer,
	}))

	// Preferences need no session principal.
	theme := NewThemeHandler()
	r.Post("/theme", theme.Toggle)
	r.Post("/accessibility", theme.Accessibility)

	sm := deps.SessionManager
	linksH := NewLinksHandler(deps.Links, sm)
	account := NewAccountHandler(sm, deps.SSOHandlers != nil)
	pages := NewPagesHandler(sm)
	describe := NewDescribeHandler(deps.Describer, sm)
	tokens := NewTokensHandler(deps.TokenStore, sm)

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware.Gate)

		r.Get("/", linksH.Index)
		r.Get("/blog", pages.Blog)
		r.Get("/blog/category/{id}", pages.Category)
		r.Get("/blog/post/{id}", pages.Post)
		r.Get("/pricing", pages.Pricing)
		r.Get("/about", pages.About)

		r.Get("/auth/login", account.LoginPage)
		r.Post("/auth/login", account.Login)
		r.Get("/auth/signup", account.SignupPage)
		r.Post("/auth/signup", account.Signup)
		r.Post("/auth/logout", account.Logout)
		if deps.SSOHandlers != nil {
			r.Get("/auth/sso", deps.SSOHandlers.Login)
			r.Get("/auth/callback", deps.SSOHandlers.Callback)
		}

		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Post("/links", linksH.Create)
			r.Get("/describe", describe.Show)
			r.Post("/describe", describe.Generate)

			r.Get("/settings/tokens", tokens.Index)
			r.Post("/settings/tokens", tokens.Create)
			r.Delete("/settings/tokens/{id}", tokens.Revoke)

			r.Group(func(r chi.Router) {
				r.Use(deps.AuthMiddleware.RequireAdmin)
				r.Get("/links/{id}/edit", linksH.Edit)
				r.Put("/links/{id}", linksH.Update)
				r.Post("/links/{id}", linksH.Update)
				r.Delete("/links/{id}", linksH.Delete)
				r.Post("/links/{id}/delete", linksH.Delete)
			})
		})
	})

	return r
}
