package cache

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analyticsadmin/internal/errs"
)

type memoryStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	getErr  error
	setErr  error
	sets    int
	deletes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}}
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.values[key] = value
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.values, key)
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = map[string][]byte{}
	return nil
}

func openDuckDB(t *testing.T) *sql.DB {
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKey(t *testing.T) {
	assert.Equal(t, "google-analytics-sessions::123456", Key("google-analytics-sessions", "123456"))
	assert.NotEqual(t, Key("a-b", "c"), Key("a", "b-c"))
}

func TestReadThroughLoadsOnceUntilHit(t *testing.T) {
	store := newMemoryStore()
	rt := NewReadThrough(store)
	calls := 0
	loader := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("rows"), nil
	}

	for i := 0; i < 3; i++ {
		data, err := rt.GetOrLoad(context.Background(), "k", time.Hour, loader)
		require.NoError(t, err)
		assert.Equal(t, []byte("rows"), data)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, store.sets)
}

func TestReadThroughFailsClosed(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	rt := NewReadThrough(store)
	called := false

	_, err := rt.GetOrLoad(context.Background(), "k", time.Hour, func(ctx context.Context) ([]byte, error) {
		called = true
		return []byte("rows"), nil
	})
	assert.ErrorIs(t, err, errs.ErrCacheUnavailable)
	assert.False(t, called)

	store.getErr = nil
	store.setErr = errors.New("read only")
	_, err = rt.GetOrLoad(context.Background(), "k", time.Hour, func(ctx context.Context) ([]byte, error) {
		return []byte("rows"), nil
	})
	assert.ErrorIs(t, err, errs.ErrCacheUnavailable)
}

func TestReadThroughPropagatesLoaderError(t *testing.T) {
	store := newMemoryStore()
	loadErr := errors.New("quota exceeded")
	_, err := NewReadThrough(store).GetOrLoad(context.Background(), "k", time.Hour, func(ctx context.Context) ([]byte, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
	assert.Zero(t, store.sets)
}

func TestWriteOnlyNeverHits(t *testing.T) {
	inner := newMemoryStore()
	store := NewWriteOnly(inner)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", []byte("secret"), time.Minute))
	_, ok, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []byte("secret"), inner.values["token"])

	require.NoError(t, store.Delete(ctx, "token"))
	assert.Equal(t, 1, inner.deletes)
}

func TestDuckDBStore(t *testing.T) {
	ctx := context.Background()
	db := openDuckDB(t)
	store, err := NewDuckDBStore(ctx, db, "reports")
	require.NoError(t, err)
	other, err := NewDuckDBStore(ctx, db, "tokens")
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte(`[{"a":1}]`), time.Hour))
	require.NoError(t, other.Set(ctx, "k", []byte("other"), 0))

	data, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"a":1}]`), data)

	require.NoError(t, store.Set(ctx, "k", []byte("replaced"), time.Hour))
	data, _, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), data)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, 1, stats.EntriesCount)

	require.NoError(t, store.Clear(ctx))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	data, ok, err = other.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("other"), data)
}

func TestDuckDBStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := NewDuckDBStore(ctx, openDuckDB(t), "reports")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Millisecond))
	require.NoError(t, store.Set(ctx, "long", []byte("y"), time.Hour))
	time.Sleep(5 * time.Millisecond)

	deleted, err := store.CleanupExpiredEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.NotNil(t, stats.LastCleanup)
	assert.Equal(t, 1, stats.EntriesCount)
}

func TestRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("http://localhost:1", "analyticsadmin")
	assert.Error(t, err)
}
