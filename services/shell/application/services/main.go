package services

import (
	"fmt"
	"io/fs"

	"github.com/ghuser/unitprice/pkg/app"
	"github.com/ghuser/unitprice/pkg/config"
	"github.com/ghuser/unitprice/services/shell/domain/repositories"
	"github.com/ghuser/unitprice/services/shell/infrastructure/origin"
	"github.com/ghuser/unitprice/services/shell/infrastructure/persistence/memory"
	"github.com/ghuser/unitprice/services/shell/infrastructure/persistence/postgres"
	"github.com/ghuser/unitprice/services/shell/infrastructure/persistence/redis"
)

// Services is the application-layer service container for the shell context.
type Services struct {
	Worker *Worker
	// Store is exposed for health checks.
	Store repositories.Store
}

// New wires the shell worker from the Application container. The store
// follows SHELL_CACHE_BACKEND; the origin is SHELL_ORIGIN_URL when set and
// the embedded assets otherwise.
func New(a *app.Application, assets fs.FS) (*Services, error) {
	store, err := NewStore(a)
	if err != nil {
		return nil, err
	}
	src, err := NewOrigin(a.Config, assets)
	if err != nil {
		return nil, err
	}
	log := a.Logger.With("context", "shell")
	log.Info("shell cache configured",
		"backend", a.Config.ShellCacheBackend,
		"generation", a.Config.ShellGeneration(),
		"remote_origin", a.Config.ShellOriginURL != "",
	)
	return &Services{
		Worker: NewWorker(store, src, WorkerOptions{Generation: a.Config.ShellGeneration()}, log),
		Store:  store,
	}, nil
}

// NewStore returns the cache store selected by a.Config.ShellCacheBackend.
func NewStore(a *app.Application) (repositories.Store, error) {
	switch a.Config.ShellCacheBackend {
	case config.CacheBackendRedis:
		if a.Redis == nil {
			return nil, fmt.Errorf("shell cache backend %q requires a redis client", a.Config.ShellCacheBackend)
		}
		return redis.NewStore(a.Redis), nil
	case config.CacheBackendPostgres:
		if a.Db == nil {
			return nil, fmt.Errorf("shell cache backend %q requires a database", a.Config.ShellCacheBackend)
		}
		return postgres.NewStore(a.Db), nil
	case config.CacheBackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown shell cache backend %q", a.Config.ShellCacheBackend)
	}
}

// NewOrigin returns the HTTP origin for cfg.ShellOriginURL, or assets when
// no URL is configured.
func NewOrigin(cfg *config.Config, assets fs.FS) (repositories.Origin, error) {
	if cfg.ShellOriginURL == "" {
		return origin.NewFS(assets), nil
	}
	o, err := origin.NewHTTP(cfg.ShellOriginURL, cfg.ShellOriginTimeout)
	if err != nil {
		return nil, fmt.Errorf("shell origin: %w", err)
	}
	return o, nil
}
