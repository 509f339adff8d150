package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	pkgvalidator "github.com/ghuser/unitprice/pkg/validator"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
	comparisondomain "github.com/ghuser/unitprice/services/comparison/domain"
	"github.com/ghuser/unitprice/services/comparison/domain/models"
)

// UpdateItemRequest is the request body for PATCH /comparisons/{comparisonID}/items/{itemID}.
// An empty value clears the field. Values are stored as sent; the request
// body limit is the only bound on their size.
type UpdateItemRequest struct {
	Field string `json:"field" validate:"required,oneof=name price weight" example:"price"`
	Value string `json:"value"                                            example:"1000"`
} // @name UpdateItemRequest

// PatchItemHandler handles PATCH /comparisons/{comparisonID}/items/{itemID} requests.
type PatchItemHandler struct {
	svc *appsvcs.Services
}

// NewPatchItemHandler returns a PatchItemHandler backed by the given services.
func NewPatchItemHandler(svc *appsvcs.Services) *PatchItemHandler {
	return &PatchItemHandler{svc: svc}
}

// Execute replaces one field of one item and returns the recalculated list.
// An unknown item id leaves the list unchanged.
//
//	@Summary		Update item field
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			comparisonID	path		string				true	"Comparison ID"	format(uuid)
//	@Param			itemID			path		string				true	"Item ID"		format(uuid)
//	@Param			request			body		UpdateItemRequest	true	"Field edit"
//	@Success		200				{object}	ComparisonResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		413				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Router			/comparisons/{comparisonID}/items/{itemID} [patch]
func (h *PatchItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}
	field, err := models.ParseField(req.Field)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: %w", comparisondomain.ErrInvalidField, err))
		return
	}

	c, err := h.svc.Comparison.UpdateItem(r.Context(), owner, id, itemID, field, req.Value)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(c))
}
