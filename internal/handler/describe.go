package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/affilinks/internal/llm"
	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/validation"
)

// DescribePage is the template data for the AI description generator.
type DescribePage struct {
	BasePage
	Enabled     bool
	Form        validation.DescribeForm
	Errors      map[string]string
	Error       string
	Description string
}

// DescribeHandler serves the AI description generator.
type DescribeHandler struct {
	describer llm.Describer
	sessions  *scs.SessionManager
}

// NewDescribeHandler creates a new DescribeHandler. d may be nil when no
// LLM provider is configured.
func NewDescribeHandler(d llm.Describer, sm *scs.SessionManager) *DescribeHandler {
	return &DescribeHandler{describer: d, sessions: sm}
}

// Show renders GET /describe.
func (h *DescribeHandler) Show(w http.ResponseWriter, r *http.Request) {
	render(w, "describe.html", DescribePage{
		BasePage: newBasePage(r, h.sessions),
		Enabled:  h.describer != nil,
	})
}

// Generate handles POST /describe. HTMX callers get only the result panel.
func (h *DescribeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	data := DescribePage{
		BasePage: newBasePage(r, h.sessions),
		Enabled:  h.describer != nil,
		Form: validation.DescribeForm{
			ProductName: r.FormValue("product_name"),
			Keywords:    r.FormValue("keywords"),
		},
	}

	status := http.StatusOK
	switch err := validation.Struct(data.Form); {
	case err != nil:
		data.Errors = fieldErrors(err)
		status = http.StatusUnprocessableEntity
	case h.describer == nil:
		data.Error = "AI descriptions are not configured."
		status = http.StatusServiceUnavailable
	default:
		resp, err := h.describer.Describe(r.Context(), llm.DescribeRequest{
			ProductName: data.Form.ProductName,
			Keywords:    data.Form.Keywords,
		})
		if err != nil {
			logger.Warnw("description generation failed", "error", err)
			data.Error = llm.UserMessage(err)
			status = http.StatusBadGateway
			if llm.IsOverloaded(err) {
				status = http.StatusServiceUnavailable
			}
			break
		}
		data.Description = resp.Description
	}

	if isHTMX(r) {
		// HTMX swaps only 2xx responses by default.
		renderFragment(w, "description_result", data)
		return
	}
	renderStatus(w, status, "describe.html", data)
}
