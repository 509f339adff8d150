package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/unitprice/pkg/logger"
	comparisondomain "github.com/ghuser/unitprice/services/comparison/domain"
	"github.com/ghuser/unitprice/services/comparison/domain/models"
)

// Options tunes a ComparisonService.
type Options struct {
	// IdleTTL evicts comparisons not touched for this long. Zero disables eviction.
	IdleTTL time.Duration
	// MaxItems caps AddItem; adding past the cap leaves the list unchanged.
	// Zero means no cap.
	MaxItems int
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
	// NewID overrides item id generation. Defaults to uuid.New.
	NewID models.IDGenerator
}

// ComparisonService keeps every live comparison in process memory.
//
// Each comparison has its own mutex, so a mutation and its recalculation
// run to completion before the next mutation of the same list starts.
// Comparisons are never persisted; a restart or idle eviction loses them.
type ComparisonService struct {
	mu          sync.Mutex
	comparisons map[uuid.UUID]*entry

	opts    Options
	log     logger.Logger
	metrics *comparisonMetrics
}

type entry struct {
	mu        sync.Mutex
	id        uuid.UUID
	ownerID   uuid.UUID
	list      *models.ItemList
	createdAt time.Time
	touchedAt time.Time
}

// NewComparisonService returns an empty ComparisonService.
func NewComparisonService(opts Options, log logger.Logger) *ComparisonService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ComparisonService{
		comparisons: make(map[uuid.UUID]*entry),
		opts:        opts,
		log:         log,
		metrics:     newComparisonMetrics(),
	}
}

// Create starts a comparison holding one blank item.
func (s *ComparisonService) Create(ctx context.Context, ownerID uuid.UUID) (*models.Comparison, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner id must be set", comparisondomain.ErrInvalidID)
	}
	now := s.opts.Now().UTC()
	e := &entry{
		id:        uuid.New(),
		ownerID:   ownerID,
		list:      models.NewItemList(s.opts.NewID),
		createdAt: now,
		touchedAt: now,
	}

	s.mu.Lock()
	s.comparisons[e.id] = e
	s.mu.Unlock()

	s.metrics.record(ctx, "create")
	s.log.InfoContext(ctx, "comparison created", "comparison_id", e.id)
	return e.snapshot(), nil
}

// Get returns the current snapshot of a comparison.
func (s *ComparisonService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Comparison, error) {
	return s.mutate(ctx, ownerID, id, "get", func(*models.ItemList) {})
}

// UpdateItem sets one field of one item. The value is stored as typed; text
// that does not parse as an amount only leaves the unit price unavailable.
// An unknown item id leaves the list as it was.
func (s *ComparisonService) UpdateItem(ctx context.Context, ownerID, id, itemID uuid.UUID, field models.Field, value string) (*models.Comparison, error) {
	return s.mutate(ctx, ownerID, id, "update", func(l *models.ItemList) {
		l.Update(itemID, field, value)
	})
}

// AddItem appends a blank item unless the list already holds MaxItems.
func (s *ComparisonService) AddItem(ctx context.Context, ownerID, id uuid.UUID) (*models.Comparison, error) {
	return s.mutate(ctx, ownerID, id, "add", func(l *models.ItemList) {
		if s.opts.MaxItems > 0 && l.Len() >= s.opts.MaxItems {
			s.log.WarnContext(ctx, "item cap reached, add ignored",
				"comparison_id", id, "max_items", s.opts.MaxItems)
			return
		}
		l.Add()
	})
}

// RemoveItem deletes an item; the last remaining item is reset instead.
func (s *ComparisonService) RemoveItem(ctx context.Context, ownerID, id, itemID uuid.UUID) (*models.Comparison, error) {
	return s.mutate(ctx, ownerID, id, "remove", func(l *models.ItemList) {
		l.Remove(itemID)
	})
}

// Reset replaces the list with a single blank item.
func (s *ComparisonService) Reset(ctx context.Context, ownerID, id uuid.UUID) (*models.Comparison, error) {
	return s.mutate(ctx, ownerID, id, "reset", func(l *models.ItemList) {
		l.Reset()
	})
}

// Delete discards a comparison.
func (s *ComparisonService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.comparisons[id]
	if !ok || e.ownerID != ownerID {
		return comparisondomain.ErrComparisonNotFound
	}
	delete(s.comparisons, id)
	s.metrics.record(ctx, "delete")
	s.log.InfoContext(ctx, "comparison deleted", "comparison_id", id)
	return nil
}

// Len returns the number of live comparisons.
func (s *ComparisonService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comparisons)
}

// EvictIdle drops every comparison untouched for longer than IdleTTL and
// returns how many were dropped.
func (s *ComparisonService) EvictIdle(ctx context.Context) int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.opts.Now().UTC().Add(-s.opts.IdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, e := range s.comparisons {
		e.mu.Lock()
		idle := e.touchedAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.comparisons, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.log.InfoContext(ctx, "idle comparisons evicted", "count", evicted, "remaining", len(s.comparisons))
	}
	return evicted
}

// RunJanitor calls EvictIdle every interval until ctx is cancelled. It
// returns at once when interval or IdleTTL is not positive.
func (s *ComparisonService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.opts.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("comparison janitor shutting down")
			return
		case <-ticker.C:
			s.EvictIdle(ctx)
		}
	}
}

func (s *ComparisonService) lookup(ownerID, id uuid.UUID) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.comparisons[id]
	if !ok || e.ownerID != ownerID {
		return nil, comparisondomain.ErrComparisonNotFound
	}
	return e, nil
}

// mutate runs fn against the comparison's list while holding its lock and
// returns the resulting snapshot.
func (s *ComparisonService) mutate(ctx context.Context, ownerID, id uuid.UUID, op string, fn func(*models.ItemList)) (*models.Comparison, error) {
	e, err := s.lookup(ownerID, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fn(e.list)
	e.touchedAt = s.opts.Now().UTC()

	if op != "get" {
		s.metrics.record(ctx, op)
		best, ok := e.list.BestDealID()
		s.log.DebugContext(ctx, "comparison recalculated",
			"comparison_id", id,
			"op", op,
			"items", e.list.Len(),
			"has_best_deal", ok,
			"best_deal_id", best,
		)
	}
	return e.snapshot(), nil
}

// snapshot must be called with e.mu held (or before e is shared).
func (e *entry) snapshot() *models.Comparison {
	best, _ := e.list.BestDealID()
	return &models.Comparison{
		ID:         e.id,
		OwnerID:    e.ownerID,
		Items:      e.list.Items(),
		BestDealID: best,
		CreatedAt:  e.createdAt,
		UpdatedAt:  e.touchedAt,
	}
}

type comparisonMetrics struct {
	mutations      metric.Int64Counter
	recalculations metric.Int64Counter
}

func newComparisonMetrics() *comparisonMetrics {
	meter := otel.Meter("github.com/ghuser/unitprice/services/comparison")
	m := &comparisonMetrics{}
	var err error
	if m.mutations, err = meter.Int64Counter("comparison.mutations",
		metric.WithDescription("Comparison mutations by operation"),
	); err != nil {
		otel.Handle(err)
	}
	if m.recalculations, err = meter.Int64Counter("comparison.recalculations",
		metric.WithDescription("Item list recalculations"),
	); err != nil {
		otel.Handle(err)
	}
	return m
}

func (m *comparisonMetrics) record(ctx context.Context, op string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
	// delete drops the list without recalculating it.
	if m.recalculations != nil && op != "delete" {
		m.recalculations.Add(ctx, 1)
	}
}
