package models

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Recalculate derives the unit price of every item and picks the best deal.
//
// A unit price exists only when both price and weight parse as positive
// decimal numbers. The best deal is the first item, in list order, whose unit
// price equals the minimum; minimums are compared with exact float equality.
// uuid.Nil is returned when no item has a unit price.
//
// The input slice is not modified.
func Recalculate(items []Item) ([]Item, uuid.UUID) {
	out := make([]Item, len(items))
	best := uuid.Nil
	minUnit := math.Inf(1)

	for i, it := range items {
		it.UnitPrice = unitPrice(it.Price, it.Weight)
		if it.UnitPrice != nil && *it.UnitPrice < minUnit {
			minUnit = *it.UnitPrice
			best = it.ID
		}
		out[i] = it
	}
	return out, best
}

func unitPrice(priceText, weightText string) *float64 {
	price, ok := ParseAmount(priceText)
	if !ok || price <= 0 {
		return nil
	}
	weight, ok := ParseAmount(weightText)
	if !ok || weight <= 0 {
		return nil
	}
	u := price / weight
	if math.IsInf(u, 0) || u <= 0 {
		return nil
	}
	return &u
}

// ParseAmount parses user input as a decimal floating-point number.
// Surrounding whitespace is ignored. Empty text, hexadecimal literals, digit
// separators, NaN and infinities are all reported as not a number.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
