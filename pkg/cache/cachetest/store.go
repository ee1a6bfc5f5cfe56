// Package cachetest provides a conformance suite for cache.Store implementations.
package cachetest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

// Entry builds a SerializedEntry holding value with the given ttl, created at now.
func Entry(t *testing.T, key string, value any, ttl time.Duration) cache.SerializedEntry {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	now := time.Now().UnixMilli()
	return cache.SerializedEntry{
		Key:            key,
		Value:          raw,
		CreatedAt:      now,
		TTL:            ttl.Milliseconds(),
		LastAccessedAt: now,
		SizeBytes:      int64(len(raw)),
	}
}

// TestStore runs the Store contract against s. Namespaces are suffixed with
// the test name, so a shared backend may be reused between packages.
func TestStore(t *testing.T, s cache.Store) {
	t.Run("SaveLoad", func(t *testing.T) {
		testSaveLoad(t, s, namespace())
	})
	t.Run("Replace", func(t *testing.T) {
		testReplace(t, s, namespace())
	})
	t.Run("Remove", func(t *testing.T) {
		testRemove(t, s, namespace())
	})
	t.Run("Clear", func(t *testing.T) {
		testClear(t, s, namespace())
	})
	t.Run("NamespaceIsolation", func(t *testing.T) {
		testIsolation(t, s, namespace())
	})
	t.Run("AwkwardKeys", func(t *testing.T) {
		testAwkwardKeys(t, s, namespace())
	})
}

func namespace() string {
	return fmt.Sprintf("ns-%d", time.Now().UnixNano())
}

func testSaveLoad(t *testing.T, s cache.Store, ns string) {
	ctx := context.Background()

	empty, err := s.Load(ctx, ns)
	require.NoError(t, err)
	assert.Empty(t, empty)

	e := Entry(t, "user:1", map[string]any{"name": "ada"}, time.Minute)
	e.AccessCount = 3
	require.NoError(t, s.Save(ctx, ns, e.Key, e))

	got, err := s.Load(ctx, ns)
	require.NoError(t, err)
	require.Contains(t, got, "user:1")

	loaded := got["user:1"]
	assert.Equal(t, e.Key, loaded.Key)
	assert.JSONEq(t, string(e.Value), string(loaded.Value))
	assert.Equal(t, e.CreatedAt, loaded.CreatedAt)
	assert.Equal(t, e.TTL, loaded.TTL)
	assert.Equal(t, e.AccessCount, loaded.AccessCount)
	assert.Equal(t, e.LastAccessedAt, loaded.LastAccessedAt)
	assert.Equal(t, e.SizeBytes, loaded.SizeBytes)
}

func testReplace(t *testing.T, s cache.Store, ns string) {
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, ns, "k", Entry(t, "k", "old", time.Minute)))
	require.NoError(t, s.Save(ctx, ns, "k", Entry(t, "k", "new", time.Minute)))

	got, err := s.Load(ctx, ns)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `"new"`, string(got["k"].Value))
}

func testRemove(t *testing.T, s cache.Store, ns string) {
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, ns, "a", Entry(t, "a", 1, 0)))
	require.NoError(t, s.Save(ctx, ns, "b", Entry(t, "b", 2, 0)))
	require.NoError(t, s.Remove(ctx, ns, "a"))
	require.NoError(t, s.Remove(ctx, ns, "missing"), "removing an absent key is not an error")

	got, err := s.Load(ctx, ns)
	require.NoError(t, err)
	assert.NotContains(t, got, "a")
	assert.Contains(t, got, "b")
}

func testClear(t *testing.T, s cache.Store, ns string) {
	ctx := context.Background()

	for i := range 3 {
		key := fmt.Sprintf("k%d", i)
		require.NoError(t, s.Save(ctx, ns, key, Entry(t, key, i, 0)))
	}
	require.NoError(t, s.Clear(ctx, ns))
	require.NoError(t, s.Clear(ctx, ns), "clearing an empty namespace is not an error")

	got, err := s.Load(ctx, ns)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testIsolation(t *testing.T, s cache.Store, ns string) {
	ctx := context.Background()
	other := ns + "-other"

	require.NoError(t, s.Save(ctx, ns, "shared", Entry(t, "shared", "mine", 0)))
	require.NoError(t, s.Save(ctx, other, "shared", Entry(t, "shared", "theirs", 0)))
	require.NoError(t, s.Clear(ctx, other))

	got, err := s.Load(ctx, ns)
	require.NoError(t, err)
	require.Contains(t, got, "shared")
	assert.JSONEq(t, `"mine"`, string(got["shared"].Value))
}

func testAwkwardKeys(t *testing.T, s cache.Store, ns string) {
	ctx := context.Background()
	keys := []string{"GET /api/users?page=2", "path/with/slashes", "ünïcødé", "dots.and:colons"}

	for _, key := range keys {
		require.NoError(t, s.Save(ctx, ns, key, Entry(t, key, key, 0)), key)
	}

	got, err := s.Load(ctx, ns)
	require.NoError(t, err)
	assert.Len(t, got, len(keys))
	for _, key := range keys {
		assert.Contains(t, got, key)
	}
}
