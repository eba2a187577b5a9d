package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/joestump/affilinks/internal/content"
)

// BlogPage is the template data for the blog index.
type BlogPage struct {
	BasePage
	Categories []content.Category
	Posts      []content.Post
}

// CategoryPage is the template data for one blog category.
type CategoryPage struct {
	BasePage
	CategoryID string
	Category   content.Category
	Posts      []content.Post
}

// PostPage is the template data for one blog post.
type PostPage struct {
	BasePage
	Post  content.Post
	Found bool
}

// PricingPage is the template data for the pricing plans.
type PricingPage struct {
	BasePage
	Plans []content.Plan
}

// AboutPage is the template data for the about page.
type AboutPage struct {
	BasePage
	About content.About
}

// PagesHandler serves the static editorial pages.
type PagesHandler struct {
	sessions *scs.SessionManager
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(sm *scs.SessionManager) *PagesHandler {
	return &PagesHandler{sessions: sm}
}

// Blog serves GET /blog.
func (h *PagesHandler) Blog(w http.ResponseWriter, r *http.Request) {
	render(w, "blog/index.html", BlogPage{
		BasePage:   newBasePage(r, h.sessions),
		Categories: content.Categories(),
		Posts:      content.Posts(),
	})
}

// Category serves GET /blog/category/{id}. An unknown category renders an
// empty list rather than a 404.
func (h *PagesHandler) Category(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cat, _ := content.FindCategory(id)
	render(w, "blog/category.html", CategoryPage{
		BasePage:   newBasePage(r, h.sessions),
		CategoryID: id,
		Category:   cat,
		Posts:      content.PostsInCategory(id),
	})
}

// Post serves GET /blog/post/{id}.
func (h *PagesHandler) Post(w http.ResponseWriter, r *http.Request) {
	post, ok := content.FindPost(chi.URLParam(r, "id"))
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	renderStatus(w, status, "blog/post.html", PostPage{
		BasePage: newBasePage(r, h.sessions),
		Post:     post,
		Found:    ok,
	})
}

// Pricing serves GET /pricing.
func (h *PagesHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	render(w, "pricing.html", PricingPage{BasePage: newBasePage(r, h.sessions), Plans: content.Plans()})
}

// About serves GET /about.
func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	render(w, "about.html", AboutPage{BasePage: newBasePage(r, h.sessions), About: content.AboutPage()})
}
