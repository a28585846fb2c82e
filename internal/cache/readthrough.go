package cache

import (
	"context"
	"fmt"
	"time"

	"analyticsadmin/internal/errs"
	"analyticsadmin/internal/logging"
	"analyticsadmin/internal/metrics"
)

// Loader produces the value to cache on a miss
type Loader func(ctx context.Context) ([]byte, error)

// ReadThrough serves values from a store, loading and storing them on a miss.
// Store failures are returned as ErrCacheUnavailable and never bypass the store.
type ReadThrough struct {
	store Store
}

func NewReadThrough(store Store) *ReadThrough {
	return &ReadThrough{store: store}
}

func (r *ReadThrough) GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader Loader) ([]byte, error) {
	data, ok, err := r.store.Get(ctx, key)
	if err != nil {
		metrics.CacheError()
		return nil, fmt.Errorf("%w: failed to read %s: %v", errs.ErrCacheUnavailable, key, err)
	}
	if ok {
		metrics.CacheHit()
		logging.Debugf("cache hit for %s", key)
		return data, nil
	}
	metrics.CacheMiss()

	data, err = loader(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.store.Set(ctx, key, data, ttl); err != nil {
		metrics.CacheError()
		return nil, fmt.Errorf("%w: failed to write %s: %v", errs.ErrCacheUnavailable, key, err)
	}
	logging.Debugf("cached %s for %s", key, ttl)
	return data, nil
}
