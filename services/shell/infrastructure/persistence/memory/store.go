// Package memory is an in-process shell cache store. It is not shared
// between processes, so it suits tests and single-process development.
package memory

import (
	"context"
	"slices"
	"sync"

	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
	"github.com/ghuser/unitprice/services/shell/domain/models"
)

// Store implements repositories.Store with nested maps.
type Store struct {
	mu          sync.RWMutex
	generations map[string]map[string]*models.Entry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{generations: make(map[string]map[string]*models.Entry)}
}

func (s *Store) Put(_ context.Context, generation string, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.generations[generation]
	if !ok {
		g = make(map[string]*models.Entry)
		s.generations[generation] = g
	}
	g[entry.Key] = entry.Clone()
	return nil
}

func (s *Store) Match(_ context.Context, generation, key string) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.generations[generation][key]
	if !ok {
		return nil, shelldomain.ErrEntryNotFound
	}
	return e.Clone(), nil
}

func (s *Store) Generations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.generations))
	for name := range s.generations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) DeleteGeneration(_ context.Context, generation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.generations, generation)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
