package handlers

import (
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// DeleteItemHandler handles DELETE /comparisons/{comparisonID}/items/{itemID} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc}
}

// Execute removes an item. Removing the only item leaves one fresh blank item.
//
//	@Summary		Remove item
//	@Tags			items
//	@Produce		json
//	@Param			comparisonID	path		string	true	"Comparison ID"	format(uuid)
//	@Param			itemID			path		string	true	"Item ID"		format(uuid)
//	@Success		200				{object}	ComparisonResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/comparisons/{comparisonID}/items/{itemID} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r, "comparisonID")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	itemID, err := pathUUID(r, "itemID")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	c, err := h.svc.Comparison.RemoveItem(r.Context(), owner, id, itemID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(c))
}
