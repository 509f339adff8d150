package domain

import "errors"

// Sentinel errors for the comparison context. Use errors.Is() to check these.
// None of them are produced by ItemList itself; they guard the service and
// transport layers around it.
var (
	// ErrComparisonNotFound indicates the comparison does not exist, was
	// evicted, or belongs to another session.
	ErrComparisonNotFound = errors.New("comparison not found")

	// ErrInvalidField indicates a field name other than name, price or weight.
	ErrInvalidField = errors.New("invalid item field")

	// ErrInvalidID indicates a malformed identifier.
	ErrInvalidID = errors.New("invalid identifier")
)
