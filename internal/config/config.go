package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/finbatch/finbatch/internal/progress"
	"gopkg.in/yaml.v3"
)

// DefaultSizeCeiling is 23 MiB, chosen to sit under common message and
// attachment limits.
const DefaultSizeCeiling = 23 * 1024 * 1024

// Config defines configuration for a batch run.
type Config struct {
	WorkRoot    string        `yaml:"work_root"`
	OutputDir   string        `yaml:"output_dir"`
	ArchiveName string        `yaml:"archive_name"`
	SizeCeiling int64         `yaml:"size_ceiling"`
	Workers     int           `yaml:"workers"`
	Duplicates  string        `yaml:"duplicates"`
	Bucket      string        `yaml:"bucket"`
	AuthHeader  string        `yaml:"auth_header"`
	AuthToken   string        `yaml:"-"`
	Timeout     time.Duration `yaml:"timeout"`
	Progress    bool          `yaml:"progress"`
	Retry       RetryConfig   `yaml:"retry"`
}

// RetryConfig defines retry behavior for individual fetches. Attempts is the
// number of additional attempts after the first; 0 means a single attempt,
// matching the baseline per-item tolerance.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		OutputDir:   ".",
		ArchiveName: "finance_output.zip",
		SizeCeiling: DefaultSizeCeiling,
		Workers:     1,
		Duplicates:  "overwrite",
		AuthHeader:  "Authorization",
		Timeout:     30 * time.Second,
		Retry: RetryConfig{
			Attempts:   0,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes and durations.
type yamlConfig struct {
	WorkRoot    string          `yaml:"work_root"`
	OutputDir   string          `yaml:"output_dir"`
	ArchiveName string          `yaml:"archive_name"`
	SizeCeiling string          `yaml:"size_ceiling"`
	Workers     int             `yaml:"workers"`
	Duplicates  string          `yaml:"duplicates"`
	Bucket      string          `yaml:"bucket"`
	AuthHeader  string          `yaml:"auth_header"`
	Timeout     string          `yaml:"timeout"`
	Progress    bool            `yaml:"progress"`
	Retry       yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.WorkRoot != "" {
		cfg.WorkRoot = yc.WorkRoot
	}
	if yc.OutputDir != "" {
		cfg.OutputDir = yc.OutputDir
	}
	if yc.ArchiveName != "" {
		cfg.ArchiveName = yc.ArchiveName
	}
	if yc.SizeCeiling != "" {
		size, err := progress.ParseBytes(yc.SizeCeiling)
		if err != nil {
			return Config{}, fmt.Errorf("parse size_ceiling: %w", err)
		}
		cfg.SizeCeiling = size
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Duplicates != "" {
		cfg.Duplicates = yc.Duplicates
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.AuthHeader != "" {
		cfg.AuthHeader = yc.AuthHeader
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	cfg.Progress = yc.Progress
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FINBATCH_ prefix. The credential value is
// only ever read from the environment (FINBATCH_AUTH_TOKEN), never from a
// config file.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FINBATCH_WORK_ROOT"); v != "" {
		c.WorkRoot = v
	}
	if v := os.Getenv("FINBATCH_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("FINBATCH_ARCHIVE_NAME"); v != "" {
		c.ArchiveName = v
	}
	if v := os.Getenv("FINBATCH_SIZE_CEILING"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse FINBATCH_SIZE_CEILING: %w", err)
		}
		c.SizeCeiling = size
	}
	if v := os.Getenv("FINBATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FINBATCH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("FINBATCH_DUPLICATES"); v != "" {
		c.Duplicates = v
	}
	if v := os.Getenv("FINBATCH_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("FINBATCH_AUTH_HEADER"); v != "" {
		c.AuthHeader = v
	}
	if v := os.Getenv("FINBATCH_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("FINBATCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FINBATCH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("FINBATCH_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("FINBATCH_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FINBATCH_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("FINBATCH_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FINBATCH_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("FINBATCH_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FINBATCH_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("config: output_dir is required")
	}
	if c.ArchiveName == "" {
		return errors.New("config: archive_name is required")
	}
	if c.SizeCeiling <= 0 {
		return errors.New("config: size_ceiling must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.Duplicates != "overwrite" && c.Duplicates != "reject" {
		return fmt.Errorf("config: duplicates must be overwrite or reject, got %q", c.Duplicates)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.WorkRoot != "" {
		c.WorkRoot = override.WorkRoot
	}
	if override.OutputDir != "" {
		c.OutputDir = override.OutputDir
	}
	if override.ArchiveName != "" {
		c.ArchiveName = override.ArchiveName
	}
	if override.SizeCeiling != 0 {
		c.SizeCeiling = override.SizeCeiling
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Duplicates != "" {
		c.Duplicates = override.Duplicates
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.AuthHeader != "" {
		c.AuthHeader = override.AuthHeader
	}
	if override.AuthToken != "" {
		c.AuthToken = override.AuthToken
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
