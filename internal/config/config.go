// Package config loads the YAML-based configuration for both the
// predictor service and the plugin client, following the same
// read-file-then-yaml.Unmarshal shape cmd/dnsscience-grpc/config.go
// uses, generalized to the service and client's own option set.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServiceConfig is the YAML configuration structure for the
// predictor-service binary.
type ServiceConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	AdminListen   string        `yaml:"admin_listen"`
	MaxPrefixLen  int           `yaml:"max_prefix_len"`
	MaxBuckets    int           `yaml:"max_buckets"`
	MaxPerBucket  int           `yaml:"max_entries_per_bucket"`
	MaxReturned   int           `yaml:"max_returned"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	CleanupPeriod time.Duration `yaml:"cleanup_interval"`
	Seeding       bool          `yaml:"seeding"`
	WarmWorkers   int           `yaml:"warm_workers"`
	WarmQueueSize int           `yaml:"warm_queue_size"`
	Logging       LoggingConfig `yaml:"logging"`
}

// DefaultServiceConfig returns the documented default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Endpoint:      "", // resolved to the platform-appropriate socket path at startup when empty
		AdminListen:   "127.0.0.1:9090",
		MaxPrefixLen:  50,
		MaxBuckets:    1000,
		MaxPerBucket:  5,
		MaxReturned:   5,
		DefaultTTL:    30 * time.Minute,
		CleanupPeriod: 5 * time.Minute,
		Seeding:       true, // off in tests, on in production
		WarmWorkers:   2,
		WarmQueueSize: 64,
		Logging:       DefaultLoggingConfig(),
	}
}

// PluginConfig is the YAML configuration structure for the
// predictor-plugin demo client.
type PluginConfig struct {
	Endpoint           string        `yaml:"endpoint"`
	TimeoutMS          int           `yaml:"timeout_ms"`
	ConnectTimeoutMS   int           `yaml:"connect_timeout_ms"`
	Logging            LoggingConfig `yaml:"logging"`
}

// DefaultPluginConfig returns the documented client-side defaults.
func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		Endpoint:         "",
		TimeoutMS:        15,
		ConnectTimeoutMS: 1000,
		Logging:          DefaultLoggingConfig(),
	}
}

// LoggingConfig controls the injected *zap.Logger (internal/logging),
// never a package-level singleton.
type LoggingConfig struct {
	Level              string `yaml:"level"`
	Structured         bool   `yaml:"structured"`
	FilePath           string `yaml:"file_path"`
	DisableFileLogging bool   `yaml:"disable_file_logging"`
	MaxSizeMB          int    `yaml:"max_size_mb"`
	MaxBackups         int    `yaml:"max_backups"`
	MaxAgeDays         int    `yaml:"max_age_days"`
}

func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:              "info",
		Structured:         true,
		FilePath:           "",
		DisableFileLogging: true,
		MaxSizeMB:          50,
		MaxBackups:         3,
		MaxAgeDays:         14,
	}
}

// LoadServiceConfig reads and parses a ServiceConfig from path,
// starting from DefaultServiceConfig() so a partial file only
// overrides the fields it sets.
func LoadServiceConfig(path string) (ServiceConfig, error) {
	cfg := DefaultServiceConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return ServiceConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

// LoadPluginConfig reads and parses a PluginConfig from path.
func LoadPluginConfig(path string) (PluginConfig, error) {
	cfg := DefaultPluginConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return PluginConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return PluginConfig{}, err
	}
	return cfg, nil
}
