package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/llm"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	BearerAuth *auth.BearerTokenMiddleware
	Links      *links.Repository
	TokenStore auth.TokenStore
	Describer  llm.Describer // nil disables POST /descriptions
}

// NewAPIRouter creates a chi sub-router for /api/v1.
// Reads of the link list and the session are public; everything else
// needs a Bearer token. All responses are application/json.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonContentType)

	lh := &linksAPIHandler{links: deps.Links}
	sh := &sessionAPIHandler{}
	dh := &descriptionsAPIHandler{describer: deps.Describer}

	r.Group(func(r chi.Router) {
		r.Use(deps.BearerAuth.Optional)
		r.Get("/session", sh.Get)
		r.Get("/links", lh.List)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.BearerAuth.Authenticate)
		r.Post("/links", lh.Create)
		r.Put("/links/{id}", lh.Update)
		r.Delete("/links/{id}", lh.Delete)
		r.Post("/descriptions", dh.Create)
		registerTokenRoutes(r, deps.TokenStore)
	})

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
