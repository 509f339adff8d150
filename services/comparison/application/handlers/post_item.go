package handlers

import (
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// PostItemHandler handles POST /comparisons/{comparisonID}/items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute appends a blank item.
//
//	@Summary		Add item
//	@Description	Appends a blank item. Past the configured item cap the list is returned unchanged.
//	@Tags			items
//	@Produce		json
//	@Param			comparisonID	path		string	true	"Comparison ID"	format(uuid)
//	@Success		200				{object}	ComparisonResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/comparisons/{comparisonID}/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "comparisonID")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	c, err := h.svc.Comparison.AddItem(r.Context(), owner, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(c))
}
