package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/unitprice/pkg/httpx"
	"github.com/ghuser/unitprice/pkg/session"
	comparisondomain "github.com/ghuser/unitprice/services/comparison/domain"
	"github.com/ghuser/unitprice/services/comparison/domain/models"
)

// ItemResponse is one row of a comparison snapshot.
type ItemResponse struct {
	ID               uuid.UUID `json:"id"                 example:"123e4567-e89b-12d3-a456-426614174000"`
	Position         int       `json:"position"           example:"1"`
	Name             string    `json:"name"               example:"Rice 5kg"`
	Price            string    `json:"price"              example:"1000"`
	Weight           string    `json:"weight"             example:"250"`
	UnitPrice        *float64  `json:"unit_price"         example:"4"`
	DisplayUnitPrice string    `json:"display_unit_price" example:"¥ 4.00 /g"`
	IsBestDeal       bool      `json:"is_best_deal"       example:"true"`
} // @name ItemResponse

// ComparisonResponse is the snapshot returned by every comparison endpoint.
type ComparisonResponse struct {
	ID         uuid.UUID      `json:"id"           example:"550e8400-e29b-41d4-a716-446655440000"`
	Items      []ItemResponse `json:"items"`
	BestDealID *uuid.UUID     `json:"best_deal_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	UpdatedAt  time.Time      `json:"updated_at"   example:"2024-01-15T10:30:00Z"`
} // @name ComparisonResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"comparison not found"`
} // @name ErrorResponse

func toResponse(c *models.Comparison) ComparisonResponse {
	items := make([]ItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = ItemResponse{
			ID:               it.ID,
			Position:         i + 1,
			Name:             it.Name,
			Price:            it.Price,
			Weight:           it.Weight,
			UnitPrice:        it.UnitPrice,
			DisplayUnitPrice: models.FormatUnitPrice(it.UnitPrice),
			IsBestDeal:       c.IsBestDeal(it),
		}
	}

	resp := ComparisonResponse{ID: c.ID, Items: items, UpdatedAt: c.UpdatedAt}
	if c.BestDealID != uuid.Nil {
		best := c.BestDealID
		resp.BestDealID = &best
	}
	return resp
}

// ownerID returns the session owner or writes a 401.
func ownerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := session.OwnerIDFromCtx(r.Context())
	if err != nil {
		httpx.JSON(w, http.StatusUnauthorized, ErrorResponse{Error: "session required"})
		return uuid.Nil, false
	}
	return id, true
}

// pathUUID parses the chi URL parameter name as a uuid.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", comparisondomain.ErrInvalidID, name, raw)
	}
	return id, nil
}
