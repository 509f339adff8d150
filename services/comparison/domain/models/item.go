package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Item is one row of a comparison. Price and Weight keep the text exactly as
// the user typed it; UnitPrice is derived by Recalculate and is nil whenever
// it cannot be computed.
type Item struct {
	ID        uuid.UUID
	Name      string
	Price     string
	Weight    string
	UnitPrice *float64
}

// NewBlankItem returns an item with empty inputs and no unit price.
func NewBlankItem(id uuid.UUID) Item {
	return Item{ID: id}
}

// Field names one of the user-editable item fields.
type Field string

const (
	FieldName   Field = "name"
	FieldPrice  Field = "price"
	FieldWeight Field = "weight"
)

// ParseField maps s to a Field. Unknown names are an error.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldName, FieldPrice, FieldWeight:
		return f, nil
	default:
		return "", fmt.Errorf("unknown item field %q", s)
	}
}

// with returns a copy of it with field replaced by value. Unknown fields
// leave the copy unchanged.
func (it Item) with(field Field, value string) Item {
	switch field {
	case FieldName:
		it.Name = value
	case FieldPrice:
		it.Price = value
	case FieldWeight:
		it.Weight = value
	}
	return it
}

// HasUnitPrice reports whether a unit price could be derived for the item.
func (it Item) HasUnitPrice() bool {
	return it.UnitPrice != nil
}
