package models

import (
	"time"

	"github.com/google/uuid"
)

// Comparison is a read-only snapshot of one comparison's item list, taken
// after a mutation has completed.
type Comparison struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID // lookups are scoped to the session owner
	Items      []Item
	BestDealID uuid.UUID // uuid.Nil when no item has a unit price
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsBestDeal reports whether it is the best deal of the snapshot. An item
// without a unit price is never the best deal.
func (c *Comparison) IsBestDeal(it Item) bool {
	return c.BestDealID != uuid.Nil && it.ID == c.BestDealID && it.HasUnitPrice()
}
