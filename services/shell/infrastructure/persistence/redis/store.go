// Package redis stores shell cache generations in Redis.
//
// Key layout:
//
//	shell:generations          set of generation names
//	shell:{gen}:keys           set of request keys stored in gen
//	shell:{gen}:entry:{key}    JSON-encoded models.Entry
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ghuser/unitprice/pkg/cache"
	shelldomain "github.com/ghuser/unitprice/services/shell/domain"
	"github.com/ghuser/unitprice/services/shell/domain/models"
)

const generationsKey = "shell:generations"

// Store implements repositories.Store against Redis. Entries have no TTL;
// stale generations are removed by Worker.Activate.
type Store struct {
	client *cache.RedisClient
}

// NewStore returns a Store on the shared Redis client.
func NewStore(client *cache.RedisClient) *Store {
	return &Store{client: client}
}

func entryKey(generation, key string) string {
	return "shell:" + generation + ":entry:" + key
}

func indexKey(generation string) string {
	return "shell:" + generation + ":keys"
}

// Put writes the entry and registers it in the generation index atomically.
func (s *Store) Put(ctx context.Context, generation string, entry *models.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	_, err = s.client.Client().TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, entryKey(generation, entry.Key), payload, 0)
		p.SAdd(ctx, indexKey(generation), entry.Key)
		p.SAdd(ctx, generationsKey, generation)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put shell entry: %w", err)
	}
	return nil
}

func (s *Store) Match(ctx context.Context, generation, key string) (*models.Entry, error) {
	data, err := s.client.Client().Get(ctx, entryKey(generation, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, shelldomain.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shell entry: %w", err)
	}

	var entry models.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode shell entry: %w", err)
	}
	return &entry, nil
}

func (s *Store) Generations(ctx context.Context) ([]string, error) {
	names, err := s.client.Client().SMembers(ctx, generationsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list shell generations: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// deleteAttempts bounds the optimistic retries of DeleteGeneration.
const deleteAttempts = 5

// DeleteGeneration removes every entry of generation, its index and its
// registration. The index is watched, so a Put racing the delete aborts the
// transaction and the delete runs again with the new index instead of
// leaving an entry behind.
func (s *Store) DeleteGeneration(ctx context.Context, generation string) error {
	index := indexKey(generation)
	drop := func(tx *goredis.Tx) error {
		keys, err := tx.SMembers(ctx, index).Result()
		if err != nil {
			return fmt.Errorf("list shell entries: %w", err)
		}
		del := make([]string, 0, len(keys)+1)
		for _, k := range keys {
			del = append(del, entryKey(generation, k))
		}
		del = append(del, index)

		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Del(ctx, del...)
			p.SRem(ctx, generationsKey, generation)
			return nil
		})
		return err
	}

	for range deleteAttempts {
		err := s.client.Client().Watch(ctx, drop, index)
		if err == nil {
			return nil
		}
		if !errors.Is(err, goredis.TxFailedErr) {
			return fmt.Errorf("delete shell generation: %w", err)
		}
	}
	return fmt.Errorf("delete shell generation %s: %w", generation, goredis.TxFailedErr)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
