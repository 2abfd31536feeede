// Package config provides configuration management for the permcomb CLI and
// run orchestration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Enumerate EnumerateConfig `mapstructure:"enumerate"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
}

// EnumerateConfig holds enumeration defaults; CLI flags override them.
type EnumerateConfig struct {
	ThreadCnt int `mapstructure:"thread_cnt"`
	CPUIndex  int `mapstructure:"cpu_index"`
	CPUCount  int `mapstructure:"cpu_cnt"`
}

// DatabaseConfig holds shard-run bookkeeping database configuration. An
// empty Type disables persistence entirely.
type DatabaseConfig struct {
	Type     string `mapstructure:"type"` // postgres, mysql, or "" (disabled)
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
}

// Enabled reports whether shard-run persistence is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Type != ""
}

// StorageConfig holds result artifact storage configuration.
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

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the specified file path. A missing file is
// not an error; defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/permcomb")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file; defaults apply.
		} else if os.IsNotExist(err) {
			// File specified but absent; defaults apply.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PERMCOMB")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from raw content (useful for testing).
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

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Enumerate.ThreadCnt <= 0 {
		return fmt.Errorf("enumerate.thread_cnt must be positive, got %d", c.Enumerate.ThreadCnt)
	}
	if c.Enumerate.CPUCount <= 0 {
		return fmt.Errorf("enumerate.cpu_cnt must be positive, got %d", c.Enumerate.CPUCount)
	}
	if c.Enumerate.CPUIndex < 0 || c.Enumerate.CPUIndex >= c.Enumerate.CPUCount {
		return fmt.Errorf("enumerate.cpu_index %d out of range [0, %d)", c.Enumerate.CPUIndex, c.Enumerate.CPUCount)
	}

	switch c.Database.Type {
	case "", "mysql", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	switch c.Storage.Type {
	case "", "local", "cos":
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("enumerate.thread_cnt", runtime.NumCPU())
	v.SetDefault("enumerate.cpu_index", 0)
	v.SetDefault("enumerate.cpu_cnt", 1)

	v.SetDefault("database.type", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./results")
	v.SetDefault("storage.scheme", "https")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
}
