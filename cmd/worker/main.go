package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/unitprice/pkg/app"
	"github.com/ghuser/unitprice/pkg/cache"
	"github.com/ghuser/unitprice/pkg/config"
	"github.com/ghuser/unitprice/pkg/database"
	"github.com/ghuser/unitprice/pkg/events"
	"github.com/ghuser/unitprice/pkg/logger"
	"github.com/ghuser/unitprice/pkg/telemetry"
	shellsvcs "github.com/ghuser/unitprice/services/shell/application/services"
	shellEvents "github.com/ghuser/unitprice/services/shell/domain/events"
	"github.com/ghuser/unitprice/web"
)

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

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{Config: cfg, Logger: log}

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck
	appConfig.EventBus = eventBus

	// Only the selected shell cache backend is connected.
	switch cfg.ShellCacheBackend {
	case config.CacheBackendRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		appConfig.Redis = redisClient
	case config.CacheBackendPostgres:
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer pool.Close()
		appConfig.Db = pool
	}

	shell, err := shellsvcs.New(appConfig, web.Shell())
	if err != nil {
		log.Error("failed to setup shell cache", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	if err := registerSubscribers(ctx, appConfig, shell); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	<-ctx.Done()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("shutting down worker...")
}

// registerSubscribers wires all event handlers.
func registerSubscribers(ctx context.Context, a *app.Application, shell *shellsvcs.Services) error {
	topic := shellEvents.TopicShellInstallRequested
	errCh, err := a.EventBus.Subscribe(ctx, topic, handleInstallRequested(a.Logger, shell))
	if err != nil {
		return err
	}

	// Drain subscriber errors so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			telemetry.ReportError(ctx, err, map[string]string{"topic": topic})
		}
	}()

	a.Logger.Info("event subscribers registered", "topics", []string{topic})
	return nil
}

// handleInstallRequested installs and then activates the requested shell
// generation. Requests for a generation other than the one this worker was
// configured with come from an api replica on another version and are
// acknowledged without work.
func handleInstallRequested(log logger.Logger, shell *shellsvcs.Services) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt shellEvents.InstallRequestedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil {
			log.ErrorContext(ctx, "dropping malformed install request", "message_id", msg.UUID, "error", err)
			return nil
		}

		if evt.Generation != shell.Worker.Generation() {
			log.WarnContext(ctx, "ignoring install request for another generation",
				"requested", evt.Generation,
				"configured", shell.Worker.Generation(),
				"event_id", evt.EventID,
			)
			return nil
		}

		report, err := shell.Worker.Install(ctx)
		if err != nil {
			return fmt.Errorf("install %s: %w", evt.Generation, err)
		}
		deleted, err := shell.Worker.Activate(ctx)
		if err != nil {
			return fmt.Errorf("activate %s: %w", evt.Generation, err)
		}

		log.InfoContext(ctx, "shell generation active",
			"generation", evt.Generation,
			"cached", len(report.Cached),
			"failed", len(report.Failed),
			"deleted_generations", deleted,
			"requested_by", evt.RequestedBy,
		)
		return nil
	}
}
