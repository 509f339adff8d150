package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/unitprice/pkg/logger"
	"github.com/ghuser/unitprice/services/shell/application/handlers"
	appsvcs "github.com/ghuser/unitprice/services/shell/application/services"
)

// ShellRoutes registers the shell document and asset routes at the root of r.
func ShellRoutes(r chi.Router, svcs *appsvcs.Services, log logger.Logger) {
	intercept := handlers.NewInterceptHandler(svcs, log)
	r.Group(func(r chi.Router) {
		r.Use(intercept.Middleware)
		r.HandleFunc("/", handlers.MethodNotAllowed)
		r.HandleFunc("/index.html", handlers.MethodNotAllowed)
		r.HandleFunc("/manifest.webmanifest", handlers.MethodNotAllowed)
		r.HandleFunc("/assets/*", handlers.MethodNotAllowed)
	})
}
