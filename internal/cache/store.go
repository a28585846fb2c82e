package cache

import (
	"context"
	"time"
)

// Store persists opaque values with an expiry. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the stored value and true, or false when the key is missing or expired
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key builds the cache key of a report for one configured view
func Key(report, viewID string) string {
	return report + "::" + viewID
}
