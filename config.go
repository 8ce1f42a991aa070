package jogger

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config defines the logger configuration parameters.
// All fields can be configured via JSON or TOML configuration files.
type Config struct {
	Level           Severity `json:"level" toml:"level"`                         // Minimum severity to process, LevelDebug passes everything
	Name            string   `json:"name" toml:"name"`                           // Base name for log files
	Directory       string   `json:"directory" toml:"directory"`                 // Directory to store log files
	QueueSize       int64    `json:"queue_size" toml:"queue_size"`               // Pending entry queue capacity, negative for unbounded
	OverflowPolicy  string   `json:"overflow_policy" toml:"overflow_policy"`     // drop_newest, drop_oldest or block
	FlushAfterMs    int64    `json:"flush_after_ms" toml:"flush_after_ms"`       // Elapsed time since last flush that makes the next log call flush
	FlushIntervalMs int64    `json:"flush_interval_ms" toml:"flush_interval_ms"` // Background flusher period, negative disables it
	MaxSizeKB       int64    `json:"max_size_kb" toml:"max_size_kb"`             // Max size of the active file in KiB before rotation, 0 disables
	RetentionDays   int64    `json:"retention_days" toml:"retention_days"`       // Startup sweep: delete files older than this many days
	RetentionSizeKB int64    `json:"retention_size_kb" toml:"retention_size_kb"` // Startup sweep: delete files larger than this many KiB
}

// defaultConfig values are used for any field left at its zero value.
func defaultConfig() *Config {
	return &Config{
		Level:           LevelDebug,
		Name:            "log",
		Directory:       "logs",
		QueueSize:       8192,
		OverflowPolicy:  OverflowDropNewest,
		FlushAfterMs:    3000,
		FlushIntervalMs: 3000,
		MaxSizeKB:       0,
		RetentionDays:   60,
		RetentionSizeKB: 10240,
	}
}

// mergeConfig fills unset user fields from the defaults. MaxSizeKB keeps its
// zero value since zero means rotation disabled.
func mergeConfig(cfg *Config) *Config {
	def := defaultConfig()
	if cfg == nil {
		return def
	}
	return &Config{
		Level:           getConfigValue(def.Level, cfg.Level),
		Name:            getConfigValue(def.Name, cfg.Name),
		Directory:       getConfigValue(def.Directory, cfg.Directory),
		QueueSize:       getConfigValue(def.QueueSize, cfg.QueueSize),
		OverflowPolicy:  getConfigValue(def.OverflowPolicy, cfg.OverflowPolicy),
		FlushAfterMs:    getConfigValue(def.FlushAfterMs, cfg.FlushAfterMs),
		FlushIntervalMs: getConfigValue(def.FlushIntervalMs, cfg.FlushIntervalMs),
		MaxSizeKB:       cfg.MaxSizeKB,
		RetentionDays:   getConfigValue(def.RetentionDays, cfg.RetentionDays),
		RetentionSizeKB: getConfigValue(def.RetentionSizeKB, cfg.RetentionSizeKB),
	}
}

// validate rejects configurations the logger cannot run with.
func (cfg *Config) validate() error {
	switch cfg.OverflowPolicy {
	case OverflowDropNewest, OverflowDropOldest, OverflowBlock:
	default:
		return fmt.Errorf("invalid overflow policy: %s", cfg.OverflowPolicy)
	}
	if cfg.FlushAfterMs < 0 {
		return fmt.Errorf("invalid flush threshold: %d ms", cfg.FlushAfterMs)
	}
	if cfg.MaxSizeKB < 0 {
		return fmt.Errorf("invalid rotation size: %d KiB", cfg.MaxSizeKB)
	}
	return nil
}

// LoadConfig reads a TOML configuration file. Fields absent from the file
// keep their zero value and are filled with defaults by New.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

// getConfigValue returns defaultVal if cfgVal equals the zero value for type T,
// otherwise returns cfgVal. Type T must satisfy the comparable constraint.
// This is commonly used for merging configuration values with their defaults.
func getConfigValue[T comparable](defaultVal, cfgVal T) T {
	var zero T
	if cfgVal == zero {
		return defaultVal
	}
	return cfgVal
}
