package repositories

import (
	"context"

	"github.com/ghuser/unitprice/services/shell/domain/models"
)

// Store is a versioned response cache. Entries live inside named
// generations; a generation is created implicitly by its first Put.
// The domain layer owns this interface; infrastructure implements it.
type Store interface {
	// Put overwrites the entry for entry.Key in generation.
	Put(ctx context.Context, generation string, entry *models.Entry) error

	// Match returns the entry for key in generation, or domain.ErrEntryNotFound.
	Match(ctx context.Context, generation, key string) (*models.Entry, error)

	// Generations lists every generation holding at least one entry.
	Generations(ctx context.Context) ([]string, error)

	// DeleteGeneration drops a generation and all of its entries.
	// Deleting an unknown generation is not an error.
	DeleteGeneration(ctx context.Context, generation string) error

	Ping(ctx context.Context) error
}

// Origin fetches shell assets from wherever they are published.
type Origin interface {
	// Fetch performs a GET for key. A non-nil error means the origin could
	// not be reached; any HTTP status, including 404, is returned as an Entry.
	Fetch(ctx context.Context, key string) (*models.Entry, error)
}
