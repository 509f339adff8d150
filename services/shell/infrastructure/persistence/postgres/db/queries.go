package db

import (
	"context"
)

const deleteGeneration = `
DELETE FROM shell_cache_entries
WHERE generation = $1`

func (q *Queries) DeleteGeneration(ctx context.Context, generation string) error {
	_, err := q.db.ExecContext(ctx, deleteGeneration, generation)
	return err
}

// header is cast to text so it scans into a string.
const getEntry = `
SELECT generation, request_key, status, header::text, body, stored_at
FROM shell_cache_entries
WHERE generation = $1 AND request_key = $2`

func (q *Queries) GetEntry(ctx context.Context, generation, requestKey string) (ShellCacheEntry, error) {
	var e ShellCacheEntry
	err := q.db.QueryRowContext(ctx, getEntry, generation, requestKey).Scan(
		&e.Generation,
		&e.RequestKey,
		&e.Status,
		&e.Header,
		&e.Body,
		&e.StoredAt,
	)
	return e, err
}

const listGenerations = `
SELECT DISTINCT generation
FROM shell_cache_entries
ORDER BY generation`

func (q *Queries) ListGenerations(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listGenerations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const upsertEntry = `
INSERT INTO shell_cache_entries (generation, request_key, status, header, body, stored_at)
VALUES ($1, $2, $3, $4::jsonb, $5, $6)
ON CONFLICT (generation, request_key) DO UPDATE
SET status    = EXCLUDED.status,
    header    = EXCLUDED.header,
    body      = EXCLUDED.body,
    stored_at = EXCLUDED.stored_at`

// UpsertEntry stores e, replacing any entry with the same generation and
// request key. Last write wins.
func (q *Queries) UpsertEntry(ctx context.Context, e ShellCacheEntry) error {
	_, err := q.db.ExecContext(ctx, upsertEntry,
		e.Generation,
		e.RequestKey,
		e.Status,
		e.Header,
		e.Body,
		e.StoredAt,
	)
	return err
}
