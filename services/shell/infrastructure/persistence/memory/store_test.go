package memory

import (
	"context"
	"errors"
	"slices"
	"testing"

	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
	"github.com/ghuser/unitprice/services/shell/domain/models"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.Match(ctx, "g1", "/"); !errors.Is(err, shelldomain.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	entry := &models.Entry{Key: "/", Status: 200, Body: []byte("v1")}
	if err := s.Put(ctx, "g1", entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry.Body[0] = 'X'

	got, err := s.Match(ctx, "g1", "/")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if string(got.Body) != "v1" {
		t.Fatalf("store must keep its own copy, got %q", got.Body)
	}

	t.Run("put overwrites", func(t *testing.T) {
		_ = s.Put(ctx, "g1", &models.Entry{Key: "/", Status: 200, Body: []byte("v2")})
		got, _ := s.Match(ctx, "g1", "/")
		if string(got.Body) != "v2" {
			t.Fatalf("expected overwrite, got %q", got.Body)
		}
	})

	t.Run("generations are isolated", func(t *testing.T) {
		if _, err := s.Match(ctx, "g2", "/"); !errors.Is(err, shelldomain.ErrEntryNotFound) {
			t.Fatalf("expected miss in other generation, got %v", err)
		}
	})

	t.Run("list and delete generations", func(t *testing.T) {
		_ = s.Put(ctx, "g0", &models.Entry{Key: "/", Status: 200})
		names, _ := s.Generations(ctx)
		if !slices.Equal(names, []string{"g0", "g1"}) {
			t.Fatalf("unexpected generations %v", names)
		}
		if err := s.DeleteGeneration(ctx, "g0"); err != nil {
			t.Fatalf("DeleteGeneration: %v", err)
		}
		if err := s.DeleteGeneration(ctx, "missing"); err != nil {
			t.Fatalf("deleting an unknown generation must succeed, got %v", err)
		}
		names, _ = s.Generations(ctx)
		if !slices.Equal(names, []string{"g1"}) {
			t.Fatalf("unexpected generations after delete %v", names)
		}
	})
}
