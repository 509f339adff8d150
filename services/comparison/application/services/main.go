package services

import (
	"github.com/ghuser/unitprice/pkg/app"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Comparison *ComparisonService
}

// New wires the comparison services from the Application container.
// Comparisons are held in memory, so call New once per process and share
// the result between the routes and the idle janitor.
func New(a *app.Application) *Services {
	return &Services{
		Comparison: NewComparisonService(Options{
			IdleTTL:  a.Config.ComparisonIdleTTL,
			MaxItems: a.Config.ComparisonMaxItems,
		}, a.Logger.With("context", "comparison")),
	}
}
