package cache

import (
	"context"
	"time"
)

// WriteOnly forwards writes to the wrapped store while every read misses.
// Token caches use it when a stale read-back could hand out a revoked credential.
type WriteOnly struct {
	store Store
}

func NewWriteOnly(store Store) *WriteOnly {
	return &WriteOnly{store: store}
}

func (w *WriteOnly) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

func (w *WriteOnly) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return w.store.Set(ctx, key, value, ttl)
}

func (w *WriteOnly) Delete(ctx context.Context, key string) error {
	return w.store.Delete(ctx, key)
}

func (w *WriteOnly) Clear(ctx context.Context) error {
	return w.store.Clear(ctx)
}
