// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/unitprice/pkg/httpx"
	comparisondomain "github.com/ghuser/unitprice/services/comparison/domain"
	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Unrecognized errors become 500 and their text is withheld.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.ClientMessage(err, status))
}

// StatusOf returns the status WriteError would use for err.
func StatusOf(err error) int {
	return mapErrorToStatus(err)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, comparisondomain.ErrComparisonNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, comparisondomain.ErrInvalidID):
		return http.StatusBadRequest // 400
	case errors.Is(err, comparisondomain.ErrInvalidField):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, shelldomain.ErrAssetUnavailable):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
