package handlers

import (
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// PostResetHandler handles POST /comparisons/{comparisonID}/reset requests.
type PostResetHandler struct {
	svc *appsvcs.Services
}

// NewPostResetHandler returns a PostResetHandler backed by the given services.
func NewPostResetHandler(svc *appsvcs.Services) *PostResetHandler {
	return &PostResetHandler{svc: svc}
}

// Execute replaces every item with a single fresh blank one.
//
//	@Summary		Reset comparison
//	@Tags			comparisons
//	@Produce		json
//	@Param			comparisonID	path		string	true	"Comparison ID"	format(uuid)
//	@Success		200				{object}	ComparisonResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/comparisons/{comparisonID}/reset [post]
func (h *PostResetHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "comparisonID")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	c, err := h.svc.Comparison.Reset(r.Context(), owner, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(c))
}
