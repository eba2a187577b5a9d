package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joestump/affilinks/internal/llm"
	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/validation"
)

// descriptionsAPIHandler provides the POST /api/v1/descriptions endpoint.
type descriptionsAPIHandler struct {
	describer llm.Describer
}

// Create generates a product description from a name and keywords.
// POST /api/v1/descriptions
//
// @Summary      Generate a product description
// @Description  Uses the configured LLM to write a short description for an affiliate link.
// @Tags         Descriptions
// @Accept       json
// @Produce      json
// @Security     BearerToken
// @Param        request  body      DescriptionRequest  true  "Product to describe"
// @Success      200      {object}  DescriptionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /descriptions [post]
func (h *descriptionsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	form := validation.DescribeForm{
		ProductName: strings.TrimSpace(req.ProductName),
		Keywords:    strings.TrimSpace(req.Keywords),
	}
	if err := validation.Struct(form); err != nil {
		writeValidationError(w, err)
		return
	}

	if h.describer == nil {
		writeError(w, http.StatusServiceUnavailable, "AI descriptions are not configured", "LLM_NOT_CONFIGURED")
		return
	}

	resp, err := h.describer.Describe(r.Context(), llm.DescribeRequest{
		ProductName: form.ProductName,
		Keywords:    form.Keywords,
	})
	if err != nil {
		logger.Warnw("api: description generation failed", "error", err)
		status := http.StatusBadGateway
		if llm.IsOverloaded(err) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, llm.UserMessage(err), "LLM_ERROR")
		return
	}
	writeJSON(w, http.StatusOK, DescriptionResponse{Description: resp.Description})
}
