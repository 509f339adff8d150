package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/unitprice/pkg/logger"
	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
	"github.com/ghuser/unitprice/services/shell/domain/models"
	"github.com/ghuser/unitprice/services/shell/domain/repositories"
)

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	// Generation is the cache generation this worker reads and writes.
	Generation string
	// Assets are the request keys precached by Install. Defaults to models.ShellAssets.
	Assets []string
	// Now overrides the clock used to stamp entries.
	Now func() time.Time
}

// Worker is the offline cache in front of the shell origin. It serves
// network-first and falls back to the current cache generation when the
// origin cannot be reached.
type Worker struct {
	store      repositories.Store
	origin     repositories.Origin
	generation string
	assets     []string
	now        func() time.Time
	log        logger.Logger
	metrics    *workerMetrics
}

// NewWorker returns a Worker over store and origin.
func NewWorker(store repositories.Store, origin repositories.Origin, opts WorkerOptions, log logger.Logger) *Worker {
	if len(opts.Assets) == 0 {
		opts.Assets = models.ShellAssets
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Worker{
		store:      store,
		origin:     origin,
		generation: opts.Generation,
		assets:     opts.Assets,
		now:        opts.Now,
		log:        log,
		metrics:    newWorkerMetrics(),
	}
}

// Generation returns the generation the worker serves from.
func (w *Worker) Generation() string {
	return w.generation
}

// AssetFailure records one asset Install could not cache.
type AssetFailure struct {
	Key string
	Err error
}

// InstallReport summarises an Install run.
type InstallReport struct {
	Generation string
	Cached     []string
	Failed     []AssetFailure
}

// Install fetches every shell asset and stores it in the current generation.
// A failing asset is logged and skipped; the remaining assets are still
// cached. Only cancellation of ctx aborts the run.
func (w *Worker) Install(ctx context.Context) (InstallReport, error) {
	report := InstallReport{Generation: w.generation}

	for _, key := range w.assets {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("install %s: %w", w.generation, err)
		}
		if err := w.installAsset(ctx, key); err != nil {
			w.metrics.installFailure(ctx)
			w.log.WarnContext(ctx, "failed to cache shell asset",
				"generation", w.generation, "key", key, "error", err)
			report.Failed = append(report.Failed, AssetFailure{Key: key, Err: err})
			continue
		}
		report.Cached = append(report.Cached, key)
	}

	w.log.InfoContext(ctx, "shell install finished",
		"generation", w.generation,
		"cached", len(report.Cached),
		"failed", len(report.Failed),
	)
	return report, nil
}

func (w *Worker) installAsset(ctx context.Context, key string) error {
	entry, err := w.origin.Fetch(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if !entry.Cacheable() {
		return fmt.Errorf("origin returned status %d", entry.Status)
	}
	entry.StoredAt = w.now().UTC()
	if err := w.store.Put(ctx, w.generation, entry); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Activate deletes every generation other than the current one and returns
// the names it deleted.
func (w *Worker) Activate(ctx context.Context) ([]string, error) {
	generations, err := w.store.Generations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}

	var deleted []string
	for _, g := range generations {
		if g == w.generation {
			continue
		}
		if err := w.store.DeleteGeneration(ctx, g); err != nil {
			return deleted, fmt.Errorf("delete generation %s: %w", g, err)
		}
		w.log.InfoContext(ctx, "deleted stale shell cache generation", "generation", g)
		deleted = append(deleted, g)
	}
	return deleted, nil
}

// Fetch serves key network-first. A successful origin response is returned
// as-is and, when cacheable, copied into the current generation. When the
// origin is unreachable the cached entry for key is served, then the cached
// root document; otherwise the error wraps ErrAssetUnavailable.
func (w *Worker) Fetch(ctx context.Context, key string) (*models.Entry, models.Source, error) {
	entry, netErr := w.origin.Fetch(ctx, key)
	if netErr == nil {
		if entry.Cacheable() {
			w.remember(ctx, entry)
		}
		w.metrics.fetch(ctx, models.SourceNetwork)
		return entry, models.SourceNetwork, nil
	}

	w.log.DebugContext(ctx, "origin unreachable, falling back to cache", "key", key, "error", netErr)

	if cached, ok := w.match(ctx, key); ok {
		w.metrics.fetch(ctx, models.SourceCache)
		return cached, models.SourceCache, nil
	}
	if root, ok := w.match(ctx, models.RootKey); ok {
		w.metrics.fetch(ctx, models.SourceRoot)
		return root, models.SourceRoot, nil
	}

	w.metrics.fetch(ctx, "unavailable")
	return nil, "", fmt.Errorf("%w: %s: %w", shelldomain.ErrAssetUnavailable, key, netErr)
}

// remember stores a copy of entry. Store failures never block the response.
func (w *Worker) remember(ctx context.Context, entry *models.Entry) {
	c := entry.Clone()
	c.StoredAt = w.now().UTC()
	if err := w.store.Put(ctx, w.generation, c); err != nil {
		w.log.WarnContext(ctx, "failed to update shell cache", "key", entry.Key, "error", err)
	}
}

func (w *Worker) match(ctx context.Context, key string) (*models.Entry, bool) {
	entry, err := w.store.Match(ctx, w.generation, key)
	if err == nil {
		return entry, true
	}
	if !errors.Is(err, shelldomain.ErrEntryNotFound) {
		w.log.WarnContext(ctx, "shell cache lookup failed", "key", key, "error", err)
	}
	return nil, false
}

type workerMetrics struct {
	fetches         metric.Int64Counter
	installFailures metric.Int64Counter
}

func newWorkerMetrics() *workerMetrics {
	meter := otel.Meter("github.com/ghuser/unitprice/services/shell")
	m := &workerMetrics{}
	var err error
	if m.fetches, err = meter.Int64Counter("shell.fetches",
		metric.WithDescription("Intercepted shell fetches by response source"),
	); err != nil {
		otel.Handle(err)
	}
	if m.installFailures, err = meter.Int64Counter("shell.install.failures",
		metric.WithDescription("Shell assets that could not be cached during install"),
	); err != nil {
		otel.Handle(err)
	}
	return m
}

func (m *workerMetrics) fetch(ctx context.Context, source models.Source) {
	if m.fetches != nil {
		m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("source", string(source))))
	}
}

func (m *workerMetrics) installFailure(ctx context.Context) {
	if m.installFailures != nil {
		m.installFailures.Add(ctx, 1)
	}
}
