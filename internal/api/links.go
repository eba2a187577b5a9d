package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/affilinks/internal/auth"
	"github.com/joestump/affilinks/internal/links"
	"github.com/joestump/affilinks/internal/store"
	"github.com/joestump/affilinks/internal/validation"
)

// linksAPIHandler provides REST handlers for affiliate links.
type linksAPIHandler struct {
	links *links.Repository
}

// List returns every link, newest first. Anonymous callers are allowed.
// GET /api/v1/links
//
// @Summary      List links
// @Description  Returns all affiliate links. Falls back to the built-in links when storage is empty or unavailable.
// @Tags         Links
// @Produce      json
// @Success      200  {object}  LinkListResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /links [get]
func (h *linksAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.links.List(r.Context())
	if err != nil {
		writeLinkError(w, r, err)
		return
	}
	resp := LinkListResponse{Links: make([]LinkResponse, 0, len(all))}
	for _, l := range all {
		resp.Links = append(resp.Links, toLinkResponse(l, links.IsSeedID(l.ID)))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a link owned by the caller. Any authenticated user may create.
// POST /api/v1/links
//
// @Summary      Create a link
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        body  body      validation.LinkForm  true  "Link to create"
// @Success      201   {object}  LinkCreatedResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /links [post]
func (h *linksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form validation.LinkForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	form.Trim()
	if err := validation.Struct(form); err != nil {
		writeValidationError(w, err)
		return
	}

	id, err := h.links.Create(r.Context(), auth.GateFromContext(r.Context()).PrincipalID(), links.LinkInput{
		ProductName:  form.ProductName,
		Description:  form.Description,
		ImageURL:     form.ImageURL,
		AffiliateURL: form.AffiliateURL,
	})
	if err != nil {
		writeLinkError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, LinkCreatedResponse{ID: id})
}

// Update changes the given fields of a link. Administrators only.
// PUT /api/v1/links/{id}
//
// @Summary      Update a link
// @Tags         Links
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Link ID"
// @Param        body  body      validation.LinkPatchForm true  "Fields to change"
// @Success      204
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /links/{id} [put]
func (h *linksAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var form validation.LinkPatchForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	form.Trim()
	if err := validation.Struct(form); err != nil {
		writeValidationError(w, err)
		return
	}
	patch := store.LinkPatch{
		ProductName:  form.ProductName,
		Description:  form.Description,
		ImageURL:     form.ImageURL,
		AffiliateURL: form.AffiliateURL,
	}
	if patch.Empty() {
		writeError(w, http.StatusBadRequest, "at least one field is required", "BAD_REQUEST")
		return
	}

	if err := h.links.Update(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		writeLinkError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a link. Administrators only. Deleting a missing link succeeds.
// DELETE /api/v1/links/{id}
//
// @Summary      Delete a link
// @Tags         Links
// @Param        id  path  string  true  "Link ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /links/{id} [delete]
func (h *linksAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.links.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLinkError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin writes 403 and returns false unless the caller is an administrator.
// It runs before the body is read so non-admins never reach the repository.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	g := auth.GateFromContext(r.Context())
	if g == nil || !g.IsAdmin() {
		writeError(w, http.StatusForbidden, "Only administrators can edit or delete links.", "FORBIDDEN")
		return false
	}
	return true
}
