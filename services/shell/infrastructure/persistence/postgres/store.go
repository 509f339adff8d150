package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ghuser/unitprice/pkg/database"
	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
	"github.com/ghuser/unitprice/services/shell/domain/models"
	"github.com/ghuser/unitprice/services/shell/infrastructure/persistence/postgres/db"
)

// Store implements repositories.Store against the shell_cache_entries table
// (see migrations/shell).
type Store struct {
	db *database.Database
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(database *database.Database) *Store {
	return &Store{db: database}
}

func (s *Store) Put(ctx context.Context, generation string, entry *models.Entry) error {
	header, err := json.Marshal(entry.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if entry.Header == nil {
		header = []byte("{}")
	}

	body := entry.Body
	if body == nil {
		body = []byte{}
	}

	if err := db.New(s.db.DB()).UpsertEntry(ctx, db.ShellCacheEntry{
		Generation: generation,
		RequestKey: entry.Key,
		Status:     int32(entry.Status),
		Header:     string(header),
		Body:       body,
		StoredAt:   entry.StoredAt,
	}); err != nil {
		return fmt.Errorf("upsert shell entry: %w", err)
	}
	return nil
}

func (s *Store) Match(ctx context.Context, generation, key string) (*models.Entry, error) {
	row, err := db.New(s.db.DB()).GetEntry(ctx, generation, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shelldomain.ErrEntryNotFound
		}
		return nil, fmt.Errorf("query shell entry: %w", err)
	}
	return rowToEntry(row)
}

func (s *Store) Generations(ctx context.Context) ([]string, error) {
	names, err := db.New(s.db.DB()).ListGenerations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shell generations: %w", err)
	}
	return names, nil
}

func (s *Store) DeleteGeneration(ctx context.Context, generation string) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := db.New(tx).DeleteGeneration(ctx, generation); err != nil {
			return fmt.Errorf("delete shell generation: %w", err)
		}
		return nil
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// rowToEntry maps a db row to a domain models.Entry.
func rowToEntry(row db.ShellCacheEntry) (*models.Entry, error) {
	var header http.Header
	if err := json.Unmarshal([]byte(row.Header), &header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	return &models.Entry{
		Key:      row.RequestKey,
		Status:   int(row.Status),
		Header:   header,
		Body:     row.Body,
		StoredAt: row.StoredAt,
	}, nil
}
