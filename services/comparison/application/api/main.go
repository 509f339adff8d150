package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/unitprice/services/comparison/application/handlers"
	appsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
)

// ComparisonRoutes registers comparison endpoints on the provided chi router.
// svcs must be the process-wide container so the janitor sees the same lists.
func ComparisonRoutes(r chi.Router, svcs *appsvcs.Services) {
	r.Group(func(r chi.Router) {
		r.Route("/comparisons", func(r chi.Router) {
			r.Post("/", handlers.NewPostComparisonHandler(svcs).Execute)
			r.Route("/{comparisonID}", func(r chi.Router) {
				r.Get("/", handlers.NewGetComparisonHandler(svcs).Execute)
				r.Delete("/", handlers.NewDeleteComparisonHandler(svcs).Execute)
				r.Post("/reset", handlers.NewPostResetHandler(svcs).Execute)
				r.Post("/items", handlers.NewPostItemHandler(svcs).Execute)
				r.Patch("/items/{itemID}", handlers.NewPatchItemHandler(svcs).Execute)
				r.Delete("/items/{itemID}", handlers.NewDeleteItemHandler(svcs).Execute)
			})
		})
	})
}
