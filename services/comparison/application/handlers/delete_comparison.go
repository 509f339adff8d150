package handlers

import (
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// DeleteComparisonHandler handles DELETE /comparisons/{comparisonID} requests.
type DeleteComparisonHandler struct {
	svc *appsvcs.Services
}

// NewDeleteComparisonHandler returns a DeleteComparisonHandler backed by the given services.
func NewDeleteComparisonHandler(svc *appsvcs.Services) *DeleteComparisonHandler {
	return &DeleteComparisonHandler{svc: svc}
}

// Execute discards a comparison.
//
//	@Summary		Delete comparison
//	@Tags			comparisons
//	@Param			comparisonID	path	string	true	"Comparison ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/comparisons/{comparisonID} [delete]
func (h *DeleteComparisonHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "comparisonID")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if err := h.svc.Comparison.Delete(r.Context(), owner, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
