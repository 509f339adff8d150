package handlers

import (
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// GetComparisonHandler handles GET /comparisons/{comparisonID} requests.
type GetComparisonHandler struct {
	svc *appsvcs.Services
}

// NewGetComparisonHandler returns a GetComparisonHandler backed by the given services.
func NewGetComparisonHandler(svc *appsvcs.Services) *GetComparisonHandler {
	return &GetComparisonHandler{svc: svc}
}

// Execute returns the current snapshot of a comparison.
//
//	@Summary		Get comparison
//	@Tags			comparisons
//	@Produce		json
//	@Param			comparisonID	path		string	true	"Comparison ID"	format(uuid)
//	@Success		200				{object}	ComparisonResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/comparisons/{comparisonID} [get]
func (h *GetComparisonHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "comparisonID")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	c, err := h.svc.Comparison.Get(r.Context(), owner, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(c))
}
