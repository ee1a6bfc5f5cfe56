package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

// Store persists cache entries as documents, one per entry, keyed by
// namespace and cache key.
type Store struct {
	coll *mongo.Collection
}

var _ cache.Store = (*Store)(nil)

type documentID struct {
	Namespace string `bson:"ns"`
	Key       string `bson:"key"`
}

type document struct {
	ID             documentID `bson:"_id"`
	Value          string     `bson:"value"`
	CreatedAt      int64      `bson:"created_at"`
	TTL            int64      `bson:"ttl"`
	AccessCount    int64      `bson:"access_count"`
	LastAccessedAt int64      `bson:"last_accessed_at"`
	SizeBytes      int64      `bson:"size_bytes"`
}

// NewStore returns a Store over coll and ensures the namespace index exists.
func NewStore(ctx context.Context, coll *mongo.Collection) (*Store, error) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "_id.ns", Value: 1}},
	})
	if err != nil {
		return nil, errors.Join(ErrFailedToCreateIndex, err)
	}
	return &Store{coll: coll}, nil
}

// NewStoreFromConfig returns a Store on the database and collection named in cfg.
func NewStoreFromConfig(ctx context.Context, client *mongo.Client, cfg Config) (*Store, error) {
	return NewStore(ctx, client.Database(cfg.Database).Collection(cfg.Collection))
}

func (s *Store) Load(ctx context.Context, namespace string) (map[string]cache.SerializedEntry, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "_id.ns", Value: namespace}})
	if err != nil {
		return nil, err
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make(map[string]cache.SerializedEntry, len(docs))
	for _, d := range docs {
		out[d.ID.Key] = cache.SerializedEntry{
			Key:            d.ID.Key,
			Value:          []byte(d.Value),
			CreatedAt:      d.CreatedAt,
			TTL:            d.TTL,
			AccessCount:    uint64(d.AccessCount),
			LastAccessedAt: d.LastAccessedAt,
			SizeBytes:      d.SizeBytes,
		}
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, namespace, key string, e cache.SerializedEntry) error {
	id := documentID{Namespace: namespace, Key: key}
	doc := document{
		ID:             id,
		Value:          string(e.Value),
		CreatedAt:      e.CreatedAt,
		TTL:            e.TTL,
		AccessCount:    int64(e.AccessCount),
		LastAccessedAt: e.LastAccessedAt,
		SizeBytes:      e.SizeBytes,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) Remove(ctx context.Context, namespace, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: documentID{Namespace: namespace, Key: key}}})
	return err
}

func (s *Store) Clear(ctx context.Context, namespace string) error {
	_, err := s.coll.DeleteMany(ctx, bson.D{{Key: "_id.ns", Value: namespace}})
	return err
}
