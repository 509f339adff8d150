package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/unitprice/pkg/cache"
	"github.com/ghuser/unitprice/pkg/config"
	"github.com/ghuser/unitprice/pkg/database"
	"github.com/ghuser/unitprice/pkg/events"
	"github.com/ghuser/unitprice/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass it to each bounded context's service constructor during start-up.
//
// Logging: app.Logger is backed by a trace-aware handler, so the context
// methods pick up trace_id, span_id and request_id automatically:
//
//	app.Logger.InfoContext(ctx, "item updated", "comparison_id", id)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store // nil in the worker process
}
