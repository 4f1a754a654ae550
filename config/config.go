// Package config loads server configuration.
//
// Sources, lowest precedence first:
//  1. Default()
//  2. YAML file (--config or ./shift-engine.yaml)
//  3. .env file in the working directory (only fills unset variables)
//  4. SHIFT_* environment variables
//  5. Command-line flags, applied by cmd/server
//
// Example shift-engine.yaml:
//
//	server:
//	  addr: ":8080"
//	storage:
//	  driver: sqlite
//	  path: shifts.db
//	pay:
//	  period_type: biweekly
//	  reference_date: "2025-01-06"
//	  base_rate_cents: 2000
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/logger"
)

// EnvPrefix prefixes every environment variable, e.g. SHIFT_SERVER_ADDR.
const EnvPrefix = "SHIFT_"

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "shift-engine.yaml"

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig          `yaml:"server" envPrefix:"SERVER_"`
	Storage StorageConfig         `yaml:"storage" envPrefix:"STORAGE_"`
	Logging logger.Config         `yaml:"logging" envPrefix:"LOG_"`
	Pay     factory.PayPolicyJSON `yaml:"pay" envPrefix:"PAY_"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`

	// Load the demo scenario on start when the store is empty.
	SeedDemo bool `yaml:"seed_demo" env:"SEED_DEMO"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"` // sqlite, bolt or memory
	Path   string `yaml:"path" env:"PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   "shifts.db",
		},
		Logging: logger.Config{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
		Pay: factory.PayPolicyJSON{
			ID:         "default",
			Name:       "Default",
			PeriodType: string(engine.PeriodWeekly),
			WeekStart:  "monday",
			Timezone:   "UTC",
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the configuration. An explicit path must exist; with an empty
// path DefaultPath is used when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			file = DefaultPath
		}
	}
	if file != "" {
		if err := cfg.mergeFile(file); err != nil {
			return nil, err
		}
	}

	// Missing .env is normal.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnv, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// mergeFile decodes YAML on top of the current values, so keys absent from
// the file keep their defaults.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

var (
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidYAML        = errors.New("invalid YAML")
	ErrInvalidEnv         = errors.New("invalid environment variable")
	ErrInvalidAddr        = errors.New("invalid server address: must not be empty")
	ErrInvalidShutdown    = errors.New("invalid shutdown timeout: must be > 0")
	ErrInvalidDriver      = errors.New("invalid storage driver: must be sqlite, bolt, or memory")
	ErrInvalidStoragePath = errors.New("invalid storage path: required for sqlite and bolt")
	ErrInvalidLogLevel    = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat   = errors.New("invalid log format: must be text or json")
)

// Validate checks every section, including that the pay section builds.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return ErrInvalidAddr
	}
	if c.Server.ShutdownTimeout <= 0 {
		return ErrInvalidShutdown
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverBolt:
		if c.Storage.Path == "" {
			return ErrInvalidStoragePath
		}
	case DriverMemory:
	default:
		return ErrInvalidDriver
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the configured pay policy.
func (c *Config) Policy() (*engine.PayPolicy, error) {
	return factory.NewPolicyFactory().FromJSON(c.Pay)
}
