package cache

import (
	"container/list"
	"encoding/json"
	"errors"
	"time"
)

type entry[V any] struct {
	key            string
	value          V
	createdAt      time.Time
	ttl            time.Duration
	lastAccessedAt time.Time
	accessCount    uint64
	sizeBytes      int64
	elem           *list.Element
}

// expired reports whether the entry's age is strictly greater than its ttl.
func (e *entry[V]) expired(now time.Time) bool {
	return e.ttl > 0 && now.Sub(e.createdAt) > e.ttl
}

func (e *entry[V]) touch(now time.Time) {
	if now.Before(e.createdAt) {
		now = e.createdAt
	}
	e.lastAccessedAt = now
	e.accessCount++
}

func (e *entry[V]) serialize() (SerializedEntry, error) {
	raw, err := json.Marshal(e.value)
	if err != nil {
		return SerializedEntry{}, errors.Join(ErrSerialization, err)
	}
	return SerializedEntry{
		Key:            e.key,
		Value:          raw,
		CreatedAt:      e.createdAt.UnixMilli(),
		TTL:            e.ttl.Milliseconds(),
		AccessCount:    e.accessCount,
		LastAccessedAt: e.lastAccessedAt.UnixMilli(),
		SizeBytes:      e.sizeBytes,
	}, nil
}

func deserialize[V any](se SerializedEntry) (*entry[V], error) {
	var v V
	if err := json.Unmarshal(se.Value, &v); err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}
	e := &entry[V]{
		key:            se.Key,
		value:          v,
		createdAt:      time.UnixMilli(se.CreatedAt),
		ttl:            time.Duration(se.TTL) * time.Millisecond,
		lastAccessedAt: time.UnixMilli(se.LastAccessedAt),
		accessCount:    se.AccessCount,
		sizeBytes:      se.SizeBytes,
	}
	if e.lastAccessedAt.Before(e.createdAt) {
		e.lastAccessedAt = e.createdAt
	}
	return e, nil
}
