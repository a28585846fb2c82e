package config

import "time"

// AppConfig holds global application configuration
type AppConfig struct {
	DatabasePath        string        `json:"database_path" yaml:"database_path"`                 // DuckDB file holding driver configs
	DefaultLookbackDays int           `json:"default_lookback_days" yaml:"default_lookback_days"` // Date window used when a query has no date bounds
	Cache               CacheConfig   `json:"cache" yaml:"cache"`
	Logging             LoggingConfig `json:"logging" yaml:"logging"`
	Server              ServerConfig  `json:"server" yaml:"server"`
	Metrics             MetricsConfig `json:"metrics" yaml:"metrics"`
	CreatedAt           time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" yaml:"updated_at"`
}

// CacheConfig selects and tunes the report cache store
type CacheConfig struct {
	Backend   string        `json:"backend" yaml:"backend"`                         // "duckdb" or "redis"
	Path      string        `json:"path,omitempty" yaml:"path,omitempty"`           // DuckDB cache file
	RedisURL  string        `json:"redis_url,omitempty" yaml:"redis_url,omitempty"` // e.g. "redis://localhost:6379/0"
	ReportTTL time.Duration `json:"report_ttl" yaml:"report_ttl"`
}

type LoggingConfig struct {
	FileDir    string `json:"file_dir,omitempty" yaml:"file_dir,omitempty"` // empty = stdout
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	Debug      bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

const (
	CacheBackendDuckDB = "duckdb"
	CacheBackendRedis  = "redis"

	DefaultLookbackDays = 365
	DefaultReportTTL    = 24 * time.Hour
	DefaultServerAddr   = ":8080"
)
