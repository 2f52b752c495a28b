// Package config provides the unified configuration system for spawnpool.
// It defines a single Config structure covering the pooling runtime and its
// ambient concerns, ensuring consistent configuration across the system.
//
// The configuration is organized into logical sections:
//   - Pooling: free-list bounds, prewarm counts, flush policy
//   - Logging: level, encoding, output paths
//   - Observability: tracing exporter and sampling
//   - Memory: memory-pressure watcher thresholds
//
// Example usage:
//
//	cfg := config.NewConfig("arena-server")
//	cfg.Pooling.DefaultMaxCount = 128
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"time"
)

// Config is the single unified configuration structure for a spawnpool
// runtime instance.
type Config struct {
	// Name identifies the runtime instance
	Name string `yaml:"name" json:"name"`
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version"`

	// Pooling controls pool sizing and flush behavior
	Pooling PoolingConfig `yaml:"pooling" json:"pooling"`

	// Logging configures the zap logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Observability configures tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Memory configures the memory-pressure watcher
	Memory MemoryConfig `yaml:"memory" json:"memory"`
}

// PoolingConfig controls pool sizing and flush behavior for handlers that
// the manager auto-creates. Manually registered handlers carry their own
// policy.
type PoolingConfig struct {
	// DefaultMaxCount bounds each auto-created handler's free list.
	// Zero means unbounded.
	DefaultMaxCount int `yaml:"default_max_count" json:"default_max_count"`
	// PrewarmCount is the number of instances constructed up front when a
	// handler is retained for the first time. Zero disables prewarming.
	PrewarmCount int `yaml:"prewarm_count" json:"prewarm_count"`
	// DisablePooling forces every spawn to construct a fresh instance and
	// every despawn to destroy it. Useful for leak hunting.
	DisablePooling bool `yaml:"disable_pooling" json:"disable_pooling"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string   `yaml:"level" json:"level"`
	Development bool     `yaml:"development" json:"development"`
	Encoding    string   `yaml:"encoding" json:"encoding"`
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`
}

// ObservabilityConfig configures tracing for spawn/despawn operations.
type ObservabilityConfig struct {
	EnableTracing  bool    `yaml:"enable_tracing" json:"enable_tracing"`
	ServiceName    string  `yaml:"service_name" json:"service_name"`
	ServiceVersion string  `yaml:"service_version" json:"service_version"`
	Environment    string  `yaml:"environment" json:"environment"`
	SamplingRate   float64 `yaml:"sampling_rate" json:"sampling_rate"`
	ExporterType   string  `yaml:"exporter_type" json:"exporter_type"`
}

// MemoryConfig configures the memory-pressure watcher that flushes inactive
// pooled instances when the process grows too large.
type MemoryConfig struct {
	// EnableWatcher turns the watcher on
	EnableWatcher bool `yaml:"enable_watcher" json:"enable_watcher"`
	// UsedPercentThreshold triggers a flush when system memory usage
	// exceeds this percentage
	UsedPercentThreshold float64 `yaml:"used_percent_threshold" json:"used_percent_threshold"`
	// RSSThresholdBytes triggers a flush when process RSS exceeds this
	// many bytes. Zero disables the RSS check.
	RSSThresholdBytes uint64 `yaml:"rss_threshold_bytes" json:"rss_threshold_bytes"`
	// CheckInterval is how often the watcher samples resource usage
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval"`
}

// NewConfig returns a Config with production defaults for the named
// runtime instance.
func NewConfig(name string) *Config {
	return &Config{
		Name:    name,
		Version: "1.0",
		Pooling: PoolingConfig{
			DefaultMaxCount: 0,
			PrewarmCount:    0,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Observability: ObservabilityConfig{
			ServiceName:    name,
			ServiceVersion: "1.0.0",
			Environment:    "production",
			SamplingRate:   0.1,
			ExporterType:   "stdout",
		},
		Memory: MemoryConfig{
			UsedPercentThreshold: 85.0,
			CheckInterval:        30 * time.Second,
		},
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	if c.Pooling.DefaultMaxCount < 0 {
		return fmt.Errorf("config: pooling.default_max_count must be >= 0, got %d", c.Pooling.DefaultMaxCount)
	}
	if c.Pooling.PrewarmCount < 0 {
		return fmt.Errorf("config: pooling.prewarm_count must be >= 0, got %d", c.Pooling.PrewarmCount)
	}
	if c.Pooling.DefaultMaxCount > 0 && c.Pooling.PrewarmCount > c.Pooling.DefaultMaxCount {
		return fmt.Errorf("config: pooling.prewarm_count (%d) exceeds default_max_count (%d)",
			c.Pooling.PrewarmCount, c.Pooling.DefaultMaxCount)
	}
	if c.Observability.SamplingRate < 0 || c.Observability.SamplingRate > 1 {
		return fmt.Errorf("config: observability.sampling_rate must be in [0,1], got %f", c.Observability.SamplingRate)
	}
	if c.Memory.EnableWatcher {
		if c.Memory.UsedPercentThreshold <= 0 || c.Memory.UsedPercentThreshold > 100 {
			return fmt.Errorf("config: memory.used_percent_threshold must be in (0,100], got %f",
				c.Memory.UsedPercentThreshold)
		}
		if c.Memory.CheckInterval <= 0 {
			return fmt.Errorf("config: memory.check_interval must be positive")
		}
	}
	return nil
}
