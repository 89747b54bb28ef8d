// Package config provides configuration management for the partitioner service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Partition PartitionConfig `mapstructure:"partition"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sources   []SourceEntry   `mapstructure:"sources"`
	Log       LogConfig       `mapstructure:"log"`
}

// PartitionConfig holds defaults for the FM partitioner itself.
type PartitionConfig struct {
	// DataDir is where per-job working files (downloaded netlists, results) live.
	DataDir string `mapstructure:"data_dir"`
	// DefaultMode is the capacity mode read from partition.default_mode and
	// checked by Validate. No command or job source reads it.
	DefaultMode string `mapstructure:"default_mode"` // "area" or "num"
	// DefaultCap is the per-partition capacity read from partition.default_cap.
	// No command or job source reads it.
	DefaultCap int `mapstructure:"default_cap"`
	// StrictCapFatal is read from partition.strict_cap_fatal. No code path
	// reads it; the worker records every infeasible job as an Infeasible run.
	StrictCapFatal bool `mapstructure:"strict_cap_fatal"`
}

// DatabaseConfig holds database connection configuration for run-history
// persistence.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres, mysql, or clickhouse
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// StorageConfig holds object storage configuration for fetching netlists and
// archiving run snapshots.
type StorageConfig struct {
	Type      string `mapstructure:"type"` // cos or local
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`     // e.g., "myqcloud.com"
	Scheme    string `mapstructure:"scheme"`     // e.g., "https" or "http"
	LocalPath string `mapstructure:"local_path"` // for local storage
}

// TelemetryConfig holds OpenTelemetry tracing configuration.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	Endpoint       string  `mapstructure:"endpoint"`
	Protocol       string  `mapstructure:"protocol"` // grpc or http
	Insecure       bool    `mapstructure:"insecure"`
	SamplerArg     float64 `mapstructure:"sampler_arg"`
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	PollInterval  int `mapstructure:"poll_interval"` // in seconds
	WorkerCount   int `mapstructure:"worker_count"`
	PrioritySlots int `mapstructure:"priority_slots"`
	TaskBatchSize int `mapstructure:"task_batch_size"`
}

// SourceEntry configures one job-dispatch source (database, http).
type SourceEntry struct {
	Type    string                 `mapstructure:"type"`
	Name    string                 `mapstructure:"name"`
	Enabled bool                   `mapstructure:"enabled"`
	Options map[string]interface{} `mapstructure:"options"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Determine config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fmpart")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Check if it's a "file not found" error (either viper's type or os error)
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			// File specified but doesn't exist, use defaults
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow environment variables to override config
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an io.Reader (useful for testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Partition defaults
	v.SetDefault("partition.data_dir", "./data")
	v.SetDefault("partition.default_mode", "area")
	v.SetDefault("partition.default_cap", 0)
	v.SetDefault("partition.strict_cap_fatal", false)

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.database", "./fmpart.db")
	v.SetDefault("database.max_conns", 10)

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./data/storage")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "fmpart")
	v.SetDefault("telemetry.protocol", "grpc")

	// Scheduler defaults
	v.SetDefault("scheduler.poll_interval", 2)
	v.SetDefault("scheduler.worker_count", 5)
	v.SetDefault("scheduler.priority_slots", 2)
	v.SetDefault("scheduler.task_batch_size", 10)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "./logs")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Database == "" {
			return fmt.Errorf("database.database (sqlite file path) is required")
		}
	case "postgres", "mysql", "clickhouse":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Partition.DefaultMode != "" && c.Partition.DefaultMode != "area" && c.Partition.DefaultMode != "num" {
		return fmt.Errorf("unsupported partition default mode: %s", c.Partition.DefaultMode)
	}

	// Storage config validation is delegated to the storage package.

	if c.Scheduler.WorkerCount < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	return nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	if c.Partition.DataDir == "" {
		return nil
	}
	return os.MkdirAll(c.Partition.DataDir, 0755)
}

// GetJobDir returns the job-specific working directory path.
func (c *Config) GetJobDir(jobUUID string) string {
	return filepath.Join(c.Partition.DataDir, jobUUID)
}
