package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

const (
	loadQuery = `SELECT cache_key, value, created_at, ttl_ms, access_count, last_accessed_at, size_bytes
		FROM cache_entries WHERE namespace = $1`

	upsertQuery = `INSERT INTO cache_entries
		(namespace, cache_key, value, created_at, ttl_ms, access_count, last_accessed_at, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (namespace, cache_key) DO UPDATE SET
			value = EXCLUDED.value,
			created_at = EXCLUDED.created_at,
			ttl_ms = EXCLUDED.ttl_ms,
			access_count = EXCLUDED.access_count,
			last_accessed_at = EXCLUDED.last_accessed_at,
			size_bytes = EXCLUDED.size_bytes`

	removeQuery = `DELETE FROM cache_entries WHERE namespace = $1 AND cache_key = $2`
	clearQuery  = `DELETE FROM cache_entries WHERE namespace = $1`
)

// Store persists cache entries in the cache_entries table created by Migrate.
type Store struct {
	pool *pgxpool.Pool
}

var _ cache.Store = (*Store)(nil)

// NewStore returns a Store using pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type row struct {
	Key            string `db:"cache_key"`
	Value          []byte `db:"value"`
	CreatedAt      int64  `db:"created_at"`
	TTL            int64  `db:"ttl_ms"`
	AccessCount    int64  `db:"access_count"`
	LastAccessedAt int64  `db:"last_accessed_at"`
	SizeBytes      int64  `db:"size_bytes"`
}

func (s *Store) Load(ctx context.Context, namespace string) (map[string]cache.SerializedEntry, error) {
	rows, err := s.pool.Query(ctx, loadQuery, namespace)
	if err != nil {
		return nil, err
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, err
	}

	out := make(map[string]cache.SerializedEntry, len(records))
	for _, r := range records {
		out[r.Key] = cache.SerializedEntry{
			Key:            r.Key,
			Value:          r.Value,
			CreatedAt:      r.CreatedAt,
			TTL:            r.TTL,
			AccessCount:    uint64(r.AccessCount),
			LastAccessedAt: r.LastAccessedAt,
			SizeBytes:      r.SizeBytes,
		}
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, namespace, key string, e cache.SerializedEntry) error {
	_, err := s.pool.Exec(ctx, upsertQuery,
		namespace, key, []byte(e.Value), e.CreatedAt, e.TTL,
		int64(e.AccessCount), e.LastAccessedAt, e.SizeBytes)
	return err
}

func (s *Store) Remove(ctx context.Context, namespace, key string) error {
	_, err := s.pool.Exec(ctx, removeQuery, namespace, key)
	return err
}

func (s *Store) Clear(ctx context.Context, namespace string) error {
	_, err := s.pool.Exec(ctx, clearQuery, namespace)
	return err
}
