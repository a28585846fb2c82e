package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Stats describes cache performance for one namespace
type Stats struct {
	Namespace    string     `json:"namespace"`
	TotalHits    int64      `json:"total_hits"`
	TotalMisses  int64      `json:"total_misses"`
	HitRate      float64    `json:"hit_rate"`
	EntriesCount int        `json:"entries_count"`
	LastCleanup  *time.Time `json:"last_cleanup,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DuckDBStore keeps cache entries in a DuckDB table, partitioned by namespace
type DuckDBStore struct {
	db        *sql.DB
	namespace string
}

// NewDuckDBStore creates the cache tables on db if needed
func NewDuckDBStore(ctx context.Context, db *sql.DB, namespace string) (*DuckDBStore, error) {
	s := &DuckDBStore{db: db, namespace: namespace}
	if err := s.initializeTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize cache tables: %w", err)
	}
	return s, nil
}

func (s *DuckDBStore) initializeTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			namespace VARCHAR NOT NULL,
			cache_key VARCHAR NOT NULL,
			data BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP,           -- NULL = never expires
			last_accessed TIMESTAMP NOT NULL,
			PRIMARY KEY (namespace, cache_key)
		)`,
		`CREATE TABLE IF NOT EXISTS cache_stats (
			namespace VARCHAR PRIMARY KEY,
			total_hits BIGINT DEFAULT 0,
			total_misses BIGINT DEFAULT 0,
			last_cleanup TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	now := utcNow()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO cache_stats (namespace, created_at, updated_at)
		VALUES (?, ?, ?)
	`, s.namespace, now, now)
	return err
}

func (s *DuckDBStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var expiresAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT data, expires_at
		FROM cache_entries
		WHERE namespace = ? AND cache_key = ?
	`, s.namespace, key).Scan(&data, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, s.incrementMisses(ctx)
		}
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	if expiresAt.Valid && !utcNow().Before(expiresAt.Time) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ? AND cache_key = ?`, s.namespace, key); err != nil {
			return nil, false, fmt.Errorf("failed to delete expired cache entry: %w", err)
		}
		return nil, false, s.incrementMisses(ctx)
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE cache_entries
		SET last_accessed = ?
		WHERE namespace = ? AND cache_key = ?
	`, utcNow(), s.namespace, key); err != nil {
		return nil, false, fmt.Errorf("failed to touch cache entry: %w", err)
	}

	return data, true, s.incrementHits(ctx)
}

func (s *DuckDBStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := utcNow()
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(ttl), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cache_entries
		(namespace, cache_key, data, created_at, expires_at, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.namespace, key, value, now, expiresAt, now)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (s *DuckDBStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ? AND cache_key = ?`, s.namespace, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry of the namespace
func (s *DuckDBStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ?`, s.namespace); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Stats returns cache performance statistics
func (s *DuckDBStore) Stats(ctx context.Context) (*Stats, error) {
	stats := Stats{Namespace: s.namespace}
	var lastCleanup sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT total_hits, total_misses, last_cleanup, created_at, updated_at
		FROM cache_stats
		WHERE namespace = ?
	`, s.namespace).Scan(&stats.TotalHits, &stats.TotalMisses, &lastCleanup, &stats.CreatedAt, &stats.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache stats: %w", err)
	}
	if lastCleanup.Valid {
		stats.LastCleanup = &lastCleanup.Time
	}

	total := stats.TotalHits + stats.TotalMisses
	if total > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(total) * 100
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries WHERE namespace = ?`, s.namespace).Scan(&stats.EntriesCount); err != nil {
		return nil, fmt.Errorf("failed to count cache entries: %w", err)
	}

	return &stats, nil
}

// CleanupExpiredEntries removes expired entries and returns how many were deleted
func (s *DuckDBStore) CleanupExpiredEntries(ctx context.Context) (int, error) {
	now := utcNow()
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM cache_entries
		WHERE namespace = ? AND expires_at IS NOT NULL AND expires_at <= ?
	`, s.namespace, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}
	deleted, _ := result.RowsAffected()

	_, err = s.db.ExecContext(ctx, `
		UPDATE cache_stats
		SET last_cleanup = ?, updated_at = ?
		WHERE namespace = ?
	`, now, now, s.namespace)

	return int(deleted), err
}

func (s *DuckDBStore) incrementHits(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE cache_stats
		SET total_hits = total_hits + 1, updated_at = ?
		WHERE namespace = ?
	`, utcNow(), s.namespace)
	return err
}

func (s *DuckDBStore) incrementMisses(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE cache_stats
		SET total_misses = total_misses + 1, updated_at = ?
		WHERE namespace = ?
	`, utcNow(), s.namespace)
	return err
}

// utcNow drops the monotonic clock and location so values round-trip through TIMESTAMP columns
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
