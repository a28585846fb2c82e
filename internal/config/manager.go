package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = ".analyticsadmin"
	ConfigFileName = "config.yaml"

	// HomeEnv overrides the config directory
	HomeEnv = "ANALYTICS_HOME"
)

// GetConfigDir returns the path to the config directory (~/.analyticsadmin)
func GetConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ConfigDirName), nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	// user read/write/execute only
	return os.MkdirAll(configDir, 0700)
}

// LoadConfig reads the global configuration, applies defaults and ANALYTICS_* overrides
func LoadConfig() (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	config := &AppConfig{}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config.CreatedAt = time.Now()
		config.UpdatedAt = time.Now()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := applyDefaults(config); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the global configuration to ~/.analyticsadmin/config.yaml
func SaveConfig(config *AppConfig) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	config.UpdatedAt = time.Now()
	if config.CreatedAt.IsZero() {
		config.CreatedAt = time.Now()
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// user read/write only
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set updates a single configuration key and saves the result
func Set(key, value string) error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := setValue(config, key, value); err != nil {
		return err
	}

	if err := SaveConfig(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

func setValue(config *AppConfig, key, value string) error {
	switch key {
	case "database_path":
		config.DatabasePath = value
	case "default_lookback_days":
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			return fmt.Errorf("default_lookback_days must be a positive integer")
		}
		config.DefaultLookbackDays = days
	case "cache.backend":
		if value != CacheBackendDuckDB && value != CacheBackendRedis {
			return fmt.Errorf("cache.backend must be %q or %q", CacheBackendDuckDB, CacheBackendRedis)
		}
		config.Cache.Backend = value
	case "cache.path":
		config.Cache.Path = value
	case "cache.redis_url":
		config.Cache.RedisURL = value
	case "cache.report_ttl":
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid cache.report_ttl: %w", err)
		}
		config.Cache.ReportTTL = ttl
	case "logging.file_dir":
		config.Logging.FileDir = value
	case "logging.debug":
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid logging.debug: %w", err)
		}
		config.Logging.Debug = debug
	case "server.addr":
		config.Server.Addr = value
	case "metrics.enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid metrics.enabled: %w", err)
		}
		config.Metrics.Enabled = enabled
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

var envKeys = map[string]string{
	"ANALYTICS_DATABASE_PATH":   "database_path",
	"ANALYTICS_LOOKBACK_DAYS":   "default_lookback_days",
	"ANALYTICS_CACHE_BACKEND":   "cache.backend",
	"ANALYTICS_CACHE_PATH":      "cache.path",
	"ANALYTICS_REDIS_URL":       "cache.redis_url",
	"ANALYTICS_REPORT_TTL":      "cache.report_ttl",
	"ANALYTICS_LOG_DIR":         "logging.file_dir",
	"ANALYTICS_SERVER_ADDR":     "server.addr",
	"ANALYTICS_METRICS_ENABLED": "metrics.enabled",
}

func applyEnv(config *AppConfig) error {
	for env, key := range envKeys {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			if err := setValue(config, key, value); err != nil {
				return fmt.Errorf("invalid %s: %w", env, err)
			}
		}
	}
	return nil
}

func applyDefaults(config *AppConfig) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if config.DatabasePath == "" {
		config.DatabasePath = filepath.Join(configDir, "analytics.db")
	}
	if config.DefaultLookbackDays == 0 {
		config.DefaultLookbackDays = DefaultLookbackDays
	}
	if config.Cache.Backend == "" {
		config.Cache.Backend = CacheBackendDuckDB
	}
	if config.Cache.Path == "" {
		config.Cache.Path = filepath.Join(configDir, "cache", "reports.db")
	}
	if config.Cache.ReportTTL == 0 {
		config.Cache.ReportTTL = DefaultReportTTL
	}
	if config.Server.Addr == "" {
		config.Server.Addr = DefaultServerAddr
	}
	return nil
}
