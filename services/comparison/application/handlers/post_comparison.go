package handlers

import (
	"net/http"

	"github.com/ghuser/unitprice/pkg/errhttp"
	"github.com/ghuser/unitprice/pkg/httpx"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// PostComparisonHandler handles POST /comparisons requests.
type PostComparisonHandler struct {
	svc *appsvcs.Services
}

// NewPostComparisonHandler returns a PostComparisonHandler backed by the given services.
func NewPostComparisonHandler(svc *appsvcs.Services) *PostComparisonHandler {
	return &PostComparisonHandler{svc: svc}
}

// Execute starts a new comparison with one blank item.
//
//	@Summary		Create comparison
//	@Description	Starts a comparison owned by the caller's session, holding a single blank item
//	@Tags			comparisons
//	@Produce		json
//	@Success		201	{object}	ComparisonResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/comparisons [post]
func (h *PostComparisonHandler) Execute(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Comparison.Create(r.Context(), owner)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(c))
}
