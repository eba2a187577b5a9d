package handler

import (
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/store"
	"github.com/joestump/affilinks/internal/validation"
)

// HomePage is the template data for the link list and the add-link form.
type HomePage struct {
	BasePage
	Links     []*store.AffiliateLink
	Form      validation.LinkForm
	Errors    map[string]string
	LoadError string
}

// EditLinkPage is the template data for the admin edit form.
type EditLinkPage struct {
	BasePage
	Link   *store.AffiliateLink
	Form   validation.LinkForm
	Errors map[string]string
}

// LinksHandler serves the home page and the link create/edit/delete forms.
type LinksHandler struct {
	links    *links.Repository
	sessions *scs.SessionManager
}

// NewLinksHandler creates a new LinksHandler.
func NewLinksHandler(repo *links.Repository, sm *scs.SessionManager) *LinksHandler {
	return &LinksHandler{links: repo, sessions: sm}
}

// Index renders GET /: every link, plus management controls for the
// signed-in user.
func (h *LinksHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, validation.LinkForm{}, nil)
}

func (h *LinksHandler) renderHome(w http.ResponseWriter, r *http.Request, status int, form validation.LinkForm, errs map[string]string) {
	data := HomePage{BasePage: newBasePage(r, h.sessions), Form: form, Errors: errs}
	all, err := h.links.List(r.Context())
	if err != nil {
		data.LoadError = linkErrorMessage(err)
	}
	data.Links = all

	if isHTMX(r) && status == http.StatusOK {
		renderFragment(w, "link_list", data)
		return
	}
	renderStatus(w, status, "home.html", data)
}

// Create handles POST /links. Any signed-in user may add a link.
func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := linkFormFromRequest(r)
	if err := validation.Struct(form); err != nil {
		h.renderHome(w, r, http.StatusUnprocessableEntity, form, fieldErrors(err))
		return
	}

	_, err := h.links.Create(r.Context(), auth.GateFromContext(r.Context()).PrincipalID(), links.LinkInput{
		ProductName:  form.ProductName,
		Description:  form.Description,
		ImageURL:     form.ImageURL,
		AffiliateURL: form.AffiliateURL,
	})
	if err != nil {
		setFlash(h.sessions, r, "error", linkErrorMessage(err))
		h.renderHome(w, r, statusFor(err), form, nil)
		return
	}

	setFlash(h.sessions, r, "success", "Affiliate link added successfully.")
	redirect(w, r, "/")
}

// Edit renders the edit form for one link. Administrators only.
func (h *LinksHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	if links.IsSeedID(id) {
		setFlash(h.sessions, r, "error", linkErrorMessage(&links.Error{Op: "update", ID: id, Kind: links.Forbidden, Err: links.ErrDefaultLink}))
		redirect(w, r, "/")
		return
	}
	link, err := h.links.Get(r.Context(), id)
	if err != nil {
		setFlash(h.sessions, r, "error", linkErrorMessage(err))
		redirect(w, r, "/")
		return
	}
	render(w, "edit.html", EditLinkPage{
		BasePage: newBasePage(r, h.sessions),
		Link:     link,
		Form: validation.LinkForm{
			ProductName:  link.ProductName,
			Description:  link.Description,
			ImageURL:     link.ImageURL,
			AffiliateURL: link.AffiliateURL,
		},
	})
}

// Update handles PUT /links/{id}. The admin check runs before the form is
// read, so a non-admin request never reaches the repository.
func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	form := linkFormFromRequest(r)
	if err := validation.Struct(form); err != nil {
		renderStatus(w, http.StatusUnprocessableEntity, "edit.html", EditLinkPage{
			BasePage: newBasePage(r, h.sessions),
			Link:     &store.AffiliateLink{ID: id},
			Form:     form,
			Errors:   fieldErrors(err),
		})
		return
	}

	err := h.links.Update(r.Context(), id, store.LinkPatch{
		ProductName:  &form.ProductName,
		Description:  &form.Description,
		ImageURL:     &form.ImageURL,
		AffiliateURL: &form.AffiliateURL,
	})
	if err != nil {
		setFlash(h.sessions, r, "error", linkErrorMessage(err))
		redirect(w, r, "/")
		return
	}
	setFlash(h.sessions, r, "success", "Affiliate link updated successfully.")
	redirect(w, r, "/")
}

// Delete handles DELETE /links/{id}. Administrators only. HTMX callers get
// an empty 200 so the row can be swapped out.
func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.links.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if isHTMX(r) {
			http.Error(w, linkErrorMessage(err), statusFor(err))
			return
		}
		setFlash(h.sessions, r, "error", linkErrorMessage(err))
		redirect(w, r, "/")
		return
	}
	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	setFlash(h.sessions, r, "success", "Affiliate link deleted successfully.")
	redirect(w, r, "/")
}

func (h *LinksHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	g := auth.GateFromContext(r.Context())
	if g != nil && g.IsAdmin() {
		return true
	}
	http.Error(w, "Only administrators can edit or delete links.", http.StatusForbidden)
	return false
}

func linkFormFromRequest(r *http.Request) validation.LinkForm {
	f := validation.LinkForm{
		ProductName:  r.FormValue("product_name"),
		Description:  r.FormValue("description"),
		ImageURL:     r.FormValue("image_url"),
		AffiliateURL: r.FormValue("affiliate_url"),
	}
	f.Trim()
	return f
}

func fieldErrors(err error) map[string]string {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return ve.ByField()
	}
	return map[string]string{"": err.Error()}
}

func statusFor(err error) int {
	switch links.KindOf(err) {
	case links.Unauthenticated:
		return http.StatusUnauthorized
	case links.Forbidden:
		return http.StatusForbidden
	case links.NotFound:
		return http.StatusNotFound
	case links.StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// redirect sends HTMX callers an HX-Redirect and everyone else a 303.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
