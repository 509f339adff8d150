package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/unitprice/docs/swagger"
	"github.com/ghuser/unitprice/pkg/app"
	"github.com/ghuser/unitprice/pkg/cache"
	"github.com/ghuser/unitprice/pkg/config"
	"github.com/ghuser/unitprice/pkg/database"
	"github.com/ghuser/unitprice/pkg/events"
	"github.com/ghuser/unitprice/pkg/httpx"
	"github.com/ghuser/unitprice/pkg/logger"
	"github.com/ghuser/unitprice/pkg/session"
	"github.com/ghuser/unitprice/pkg/telemetry"
	comparisonApi "github.com/ghuser/unitprice/services/comparison/application/api"
	comparisonsvcs "github.com/ghuser/unitprice/services/comparison/application/services"
	shellApi "github.com/ghuser/unitprice/services/shell/application/api"
	shellsvcs "github.com/ghuser/unitprice/services/shell/application/services"
	shellEvents "github.com/ghuser/unitprice/services/shell/domain/events"
	"github.com/ghuser/unitprice/web"
)

// @title					Unit Price API
// @version				1.0
// @description			Compare items by price per gram and keep the app shell available offline.
// @contact.name			API Support
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	// Sentry is optional: log and continue on failure.
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	// Install requests go through the outbox so one published before a crash
	// still reaches a worker.
	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	sessionStore := session.NewRedisStore(redisClient.Client(), session.StoreOptions{
		AuthKey:       []byte(cfg.SessionAuthKey),
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		Secure:        cfg.Environment == config.EnvProduction,
		MaxAge:        cfg.SessionMaxAge,
		IdleTTL:       cfg.ComparisonIdleTTL,
	})
	log.Info("session store initialized", "backend", "redis")

	appConfig := &app.Application{
		Config:       cfg,
		Db:           pool,
		Logger:       log,
		EventBus:     eventBus,
		Redis:        redisClient,
		SessionStore: sessionStore,
	}

	comparisons := comparisonsvcs.New(appConfig)
	go comparisons.Comparison.RunJanitor(ctx, janitorInterval(cfg.ComparisonIdleTTL))

	shell, err := shellsvcs.New(appConfig, web.Shell())
	if err != nil {
		log.Error("failed to setup shell cache", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	requestShellInstall(ctx, appConfig, shell)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(
		httpx.HealthCheck{Name: "database", Checker: pool},
		httpx.HealthCheck{Name: "redis", Checker: redisClient},
		httpx.HealthCheck{Name: "event_bus", Checker: eventBus},
		httpx.HealthCheck{Name: "shell_cache", Checker: shell.Store},
	))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		r.Use(session.RequireSession(sessionStore, log))
		comparisonApi.ComparisonRoutes(r, comparisons)
	})
	shellApi.ShellRoutes(r, shell, log)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
	log.Info("server stopped", "live_comparisons", comparisons.Comparison.Len())
}

// janitorInterval sweeps four times per idle TTL, at most once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}

// requestShellInstall asks a worker to precache the configured shell
// generation. The memory backend is private to this process, so it is
// installed in place instead.
func requestShellInstall(ctx context.Context, a *app.Application, shell *shellsvcs.Services) {
	generation := shell.Worker.Generation()

	if a.Config.ShellCacheBackend == config.CacheBackendMemory {
		go func() {
			if _, err := shell.Worker.Install(ctx); err != nil {
				a.Logger.Warn("in-process shell install aborted", "error", err)
				return
			}
			if _, err := shell.Worker.Activate(ctx); err != nil {
				a.Logger.Warn("in-process shell activate failed", "error", err)
			}
		}()
		return
	}

	evt := shellEvents.NewInstallRequestedEvent(generation, a.Config.ServiceName)
	if err := a.EventBus.PublishJSON(ctx, shellEvents.TopicShellInstallRequested, evt); err != nil {
		// The shell is still served network-first; only offline fallback is delayed.
		a.Logger.Error("failed to request shell install", "generation", generation, "error", err)
		telemetry.ReportError(ctx, err, map[string]string{"generation": generation})
		return
	}
	a.Logger.Info("shell install requested", "generation", generation, "event_id", evt.EventID)
}
