package api

import (
	"net/http"

	"github.com/joestump/affilinks/internal/auth"
)

type sessionAPIHandler struct{}

// Get reports who the caller is and whether they may edit links.
// GET /api/v1/session
//
// @Summary      Current session
// @Tags         Session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /session [get]
func (h *sessionAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{State: auth.Anonymous.String()}
	if g := auth.GateFromContext(r.Context()); g != nil {
		s := g.Session()
		resp = SessionResponse{State: s.State.String(), Principal: s.Principal, IsAdmin: s.IsAdmin}
	}
	writeJSON(w, http.StatusOK, resp)
}
