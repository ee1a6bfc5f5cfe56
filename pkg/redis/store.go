package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

// Store persists cache entries in Redis, one hash per namespace. The hash key
// is "<prefix>:<namespace>" and each field holds one JSON-encoded entry.
type Store struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

var _ cache.Store = (*Store)(nil)

// NewStore wraps a connected client with the default key prefix.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{
		db:            client,
		prefix:        "smartcache",
		scanBatchSize: 1000,
	}
}

// NewStoreWithConfig wraps a connected client using the prefix and scan batch size from cfg.
func NewStoreWithConfig(client redis.UniversalClient, cfg Config) *Store {
	s := NewStore(client)
	if cfg.KeyPrefix != "" {
		s.prefix = cfg.KeyPrefix
	}
	if cfg.ScanBatchSize > 0 {
		s.scanBatchSize = int64(cfg.ScanBatchSize)
	}
	return s
}

func (s *Store) hashKey(namespace string) string {
	return s.prefix + ":" + namespace
}

// Load returns every entry stored in the namespace hash. Fields that do not
// decode are deleted and left out of the result.
func (s *Store) Load(ctx context.Context, namespace string) (map[string]cache.SerializedEntry, error) {
	fields, err := s.db.HGetAll(ctx, s.hashKey(namespace)).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]cache.SerializedEntry, len(fields))
	var corrupt []string
	for key, raw := range fields {
		var e cache.SerializedEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			corrupt = append(corrupt, key)
			continue
		}
		out[key] = e
	}
	if len(corrupt) > 0 {
		_ = s.db.HDel(ctx, s.hashKey(namespace), corrupt...).Err()
	}
	return out, nil
}

// Save writes one entry into the namespace hash.
func (s *Store) Save(ctx context.Context, namespace, key string, e cache.SerializedEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Join(cache.ErrSerialization, err)
	}
	return s.db.HSet(ctx, s.hashKey(namespace), key, raw).Err()
}

// Remove deletes one field from the namespace hash.
func (s *Store) Remove(ctx context.Context, namespace, key string) error {
	return s.db.HDel(ctx, s.hashKey(namespace), key).Err()
}

// Clear drops the namespace hash.
func (s *Store) Clear(ctx context.Context, namespace string) error {
	return s.db.Del(ctx, s.hashKey(namespace)).Err()
}

// Namespaces lists the namespaces that currently hold entries, using SCAN to
// avoid blocking Redis.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	var (
		namespaces []string
		cursor     uint64
	)
	match := s.prefix + ":*"
	for {
		batch, next, err := s.db.Scan(ctx, cursor, match, s.scanBatchSize).Result()
		if err != nil {
			return nil, errors.Join(ErrNamespaceScan, err)
		}
		for _, key := range batch {
			namespaces = append(namespaces, strings.TrimPrefix(key, s.prefix+":"))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return namespaces, nil
}

// Conn returns the underlying Redis client for advanced operations.
func (s *Store) Conn() redis.UniversalClient {
	return s.db
}

// Close terminates the Redis connection.
func (s *Store) Close() error {
	return s.db.Close()
}
