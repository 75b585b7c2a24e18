// Package config loads tracker settings from defaults, an optional dotenv
// file, an optional YAML file and TRACKER_* environment variables, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Join strategies for the reconciliation engine.
const (
	JoinNested = "nested"
	JoinHash   = "hash"
)

// Config holds all tracker configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Report    ReportConfig    `yaml:"report"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver     string      `yaml:"driver"` // sqlite, redis
	SQLitePath string      `yaml:"sqlite_path"`
	Redis      RedisConfig `yaml:"redis"`
	// OneToOne rejects a second applicant on an assignment that already has one.
	OneToOne bool `yaml:"one_to_one"`
}

// RedisConfig configures the redis store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ReportConfig configures the overview report file.
type ReportConfig struct {
	OutputPath string `yaml:"output_path"`
	LineEnding string `yaml:"line_ending"` // lf, crlf
}

// ReconcileConfig configures the bulk load.
type ReconcileConfig struct {
	Join string `yaml:"join"` // nested, hash
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "applicants.db",
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Report: ReportConfig{
			OutputPath: "output.txt",
			LineEnding: "lf",
		},
		Reconcile: ReconcileConfig{
			Join: JoinNested,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DotenvFile is loaded into the environment when present. Variables already
// set in the environment are not overwritten.
const DotenvFile = ".env"

// Load builds the configuration. A missing YAML file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(DotenvFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", DotenvFile, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("TRACKER_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("TRACKER_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := os.Getenv("TRACKER_REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
	}
	if v := os.Getenv("TRACKER_REDIS_PASSWORD"); v != "" {
		c.Store.Redis.Password = v
	}
	if v := os.Getenv("TRACKER_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRACKER_REDIS_DB must be an integer: %w", err)
		}
		c.Store.Redis.DB = n
	}
	if v := os.Getenv("TRACKER_LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TRACKER_OUTPUT_PATH"); v != "" {
		c.Report.OutputPath = v
	}
	if v := os.Getenv("TRACKER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate rejects settings no component understands.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Reconcile.Join {
	case JoinNested, JoinHash:
	default:
		return fmt.Errorf("unknown reconcile join %q", c.Reconcile.Join)
	}
	if _, err := c.Report.Newline(); err != nil {
		return err
	}
	return nil
}

// Newline returns the line terminator for the report file.
func (r ReportConfig) Newline() (string, error) {
	switch r.LineEnding {
	case "", "lf":
		return "\n", nil
	case "crlf":
		return "\r\n", nil
	default:
		return "", fmt.Errorf("unknown report line ending %q", r.LineEnding)
	}
}
