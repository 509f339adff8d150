package postgres

import (
	"context"
	"errors"
	"net/http"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/unitprice/migrations/shell"
	"github.com/ghuser/unitprice/pkg/database"
	"github.com/ghuser/unitprice/pkg/logger"
	"github.com/ghuser/unitprice/pkg/migrator"
	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
	"github.com/ghuser/unitprice/services/shell/domain/models"
)

// Integration tests, skipped unless DATABASE_URL is set.
func newIntegrationStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres shell store tests")
	}
	d, err := database.NewPool(context.Background(), url, logger.Nop())
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(d.Close)
	if err := migrator.Up(d.DB(), shell.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewStore(d)
}

func TestStore_Integration(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()
	gen := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = s.DeleteGeneration(context.Background(), gen) })

	if _, err := s.Match(ctx, gen, "/"); !errors.Is(err, shelldomain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	want := &models.Entry{
		Key:      "/manifest.webmanifest",
		Status:   http.StatusOK,
		Header:   http.Header{"Content-Type": {"application/manifest+json"}},
		Body:     []byte(`{"name":"Unit Price Calculator"}`),
		StoredAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if err := s.Put(ctx, gen, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	t.Run("put overwrites", func(t *testing.T) {
		again := want.Clone()
		again.Body = []byte(`{"name":"Unit Price"}`)
		if err := s.Put(ctx, gen, again); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Match(ctx, gen, want.Key)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if string(got.Body) != `{"name":"Unit Price"}` {
			t.Fatalf("expected overwritten body, got %q", got.Body)
		}
		if got.Header.Get("Content-Type") != "application/manifest+json" || !got.StoredAt.Equal(want.StoredAt) {
			t.Fatalf("unexpected entry: %+v", got)
		}
	})

	t.Run("nil header", func(t *testing.T) {
		if err := s.Put(ctx, gen, &models.Entry{Key: "/", Status: http.StatusOK, Body: []byte("<html>"), StoredAt: want.StoredAt}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Match(ctx, gen, "/")
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if len(got.Header) != 0 {
			t.Fatalf("expected empty header, got %v", got.Header)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		if err := s.Put(ctx, gen, &models.Entry{Key: "/empty", Status: http.StatusOK, StoredAt: want.StoredAt}); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Match(ctx, gen, "/empty")
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if len(got.Body) != 0 {
			t.Fatalf("expected empty body, got %q", got.Body)
		}
	})

	names, err := s.Generations(ctx)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if !slices.Contains(names, gen) {
		t.Fatalf("expected %s in %v", gen, names)
	}

	if err := s.DeleteGeneration(ctx, gen); err != nil {
		t.Fatalf("DeleteGeneration: %v", err)
	}
	if _, err := s.Match(ctx, gen, want.Key); !errors.Is(err, shelldomain.ErrEntryNotFound) {
		t.Fatalf("expected entry gone after delete, got %v", err)
	}

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
