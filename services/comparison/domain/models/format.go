package models

import "strconv"

const (
	currencySymbol  = "¥"
	weightUnit      = "g"
	unavailableText = "---"
)

// FormatUnitPrice renders a unit price for display, e.g. "¥ 4.00 /g".
// A nil unit price renders as "---".
func FormatUnitPrice(u *float64) string {
	if u == nil {
		return unavailableText
	}
	return currencySymbol + " " + strconv.FormatFloat(*u, 'f', 2, 64) + " /" + weightUnit
}
