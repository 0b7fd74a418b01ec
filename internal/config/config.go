// Package config loads server configuration in layers, each overriding the
// one before it:
//
//  1. built-in defaults
//  2. a YAML file named by --config or BOOKSWAP_CONFIG
//  3. a .env file (missing is fine)
//  4. BOOKSWAP_* environment variables
//  5. command-line flags
//
// Validate must pass before the configuration is used.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development enables the demo seed and text logs.
	Development Environment = "development"
	// Production uses JSON logs and refuses demo data.
	Production Environment = "production"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store timeout bounds.
const (
	MinStoreTimeout = time.Second
	MaxStoreTimeout = 30 * time.Second
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BOOKSWAP_"

// Config is the server configuration.
type Config struct {
	Environment Environment `yaml:"env"`

	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	DB DBConfig `yaml:"db"`

	// StoreTimeout bounds every request and the store calls it makes.
	StoreTimeout time.Duration `yaml:"store_timeout"`

	SlowQueryMs        int    `yaml:"slow_query_ms"`
	SlowRequestMs      int    `yaml:"slow_request_ms"`
	RateLimitPerSecond int    `yaml:"rate_limit_per_second"`
	LogLevel           string `yaml:"log_level"`
	SeedDemoData       bool   `yaml:"seed_demo_data"`
	PerfEndpoint       bool   `yaml:"perf_endpoint"`
}

// DBConfig selects and tunes the durable store.
type DBConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// URL is the Postgres connection string.
	URL string `yaml:"url"`

	MaxOpenConns  int `yaml:"max_open_conns"`
	BusyTimeoutMs int `yaml:"busy_timeout_ms"`
}

// Default returns the configuration used before any layer is applied.
func Default() *Config {
	return &Config{
		Environment: Development,
		Addr:        ":8080",
		DB: DBConfig{
			Driver:        DriverSQLite,
			Path:          "bookswap.db",
			MaxOpenConns:  25,
			BusyTimeoutMs: 5000,
		},
		StoreTimeout:       5 * time.Second,
		SlowQueryMs:        100,
		SlowRequestMs:      200,
		RateLimitPerSecond: 10,
		LogLevel:           "info",
	}
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from args (without the program name) and
// the environment. The returned config has passed Validate.
func Load(args []string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("bookswap", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "path to a YAML config file (or "+EnvPrefix+"CONFIG)")
	envFile := fs.String("env-file", ".env", "path to an optional .env file")
	addr := fs.String("addr", cfg.Addr, "HTTP listen address")
	driver := fs.String("db-driver", cfg.DB.Driver, "database driver: sqlite or postgres")
	dbPath := fs.String("db-path", cfg.DB.Path, "SQLite database file")
	dbURL := fs.String("db-url", "", "Postgres connection URL")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	storeTimeout := fs.Duration("store-timeout", cfg.StoreTimeout, "per-request store deadline")
	seedDemo := fs.Bool("seed-demo", false, "load demo users, books and messages (development only)")
	perfEndpoint := fs.Bool("perf", false, "expose GET /debug/perf")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// .env values sit below the real environment.
	dotenv, err := readDotenv(*envFile, fs.Changed("env-file"))
	if err != nil {
		return nil, err
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if *configPath == "" {
		*configPath, _ = env(EnvPrefix + "CONFIG")
	}
	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	if fs.Changed("addr") {
		cfg.Addr = *addr
	}
	if fs.Changed("db-driver") {
		cfg.DB.Driver = *driver
	}
	if fs.Changed("db-path") {
		cfg.DB.Path = *dbPath
	}
	if fs.Changed("db-url") {
		cfg.DB.URL = *dbURL
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("store-timeout") {
		cfg.StoreTimeout = *storeTimeout
	}
	if fs.Changed("seed-demo") {
		cfg.SeedDemoData = *seedDemo
	}
	if fs.Changed("perf") {
		cfg.PerfEndpoint = *perfEndpoint
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readDotenv reads path if it exists. A missing default file is not an error;
// a missing file the operator named explicitly is.
func readDotenv(path string, explicit bool) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err == nil {
		return vals, nil
	}
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return map[string]string{}, nil
	}
	return nil, fmt.Errorf("read env file %s: %w", path, err)
}

// loadFile merges a YAML file into c. Unknown keys are rejected.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays BOOKSWAP_* variables. DATABASE_URL is honoured as a
// fallback for the Postgres URL since hosting platforms set it.
func (c *Config) applyEnv(env LookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := env(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := env(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := env(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	var environment string
	str("ENV", &environment)
	if environment != "" {
		c.Environment = Environment(environment)
	}
	str("ADDR", &c.Addr)
	str("DB_DRIVER", &c.DB.Driver)
	str("DB_PATH", &c.DB.Path)
	if v, ok := env("DATABASE_URL"); ok && v != "" {
		c.DB.URL = v
	}
	str("DB_URL", &c.DB.URL)
	num("DB_MAX_OPEN_CONNS", &c.DB.MaxOpenConns)
	num("DB_BUSY_TIMEOUT_MS", &c.DB.BusyTimeoutMs)
	if v, ok := env(EnvPrefix + "STORE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSTORE_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.StoreTimeout = d
		}
	}
	num("SLOW_QUERY_MS", &c.SlowQueryMs)
	num("SLOW_REQUEST_MS", &c.SlowRequestMs)
	num("RATE_LIMIT_PER_SECOND", &c.RateLimitPerSecond)
	str("LOG_LEVEL", &c.LogLevel)
	flag("SEED_DEMO_DATA", &c.SeedDemoData)
	flag("PERF_ENDPOINT", &c.PerfEndpoint)

	return errors.Join(errs...)
}

// Validate checks the configuration for errors. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid env: %q", c.Environment))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}

	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			errs = append(errs, errors.New("db.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.DB.URL == "" {
			errs = append(errs, errors.New("db.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db.driver: %q", c.DB.Driver))
	}
	if c.DB.MaxOpenConns < 1 {
		errs = append(errs, errors.New("db.max_open_conns must be positive"))
	}

	if c.StoreTimeout < MinStoreTimeout || c.StoreTimeout > MaxStoreTimeout {
		errs = append(errs, fmt.Errorf("store_timeout %s outside [%s, %s]", c.StoreTimeout, MinStoreTimeout, MaxStoreTimeout))
	}
	if c.RateLimitPerSecond < 0 {
		errs = append(errs, errors.New("rate_limit_per_second must not be negative"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.SeedDemoData && c.Environment == Production {
		errs = append(errs, errors.New("seed_demo_data is not allowed in production"))
	}

	return errors.Join(errs...)
}

// SlogLevel returns the configured log level.
// PRE: Validate passed
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// SlowQuery returns the slow query threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMs) * time.Millisecond
}

// SlowRequest returns the slow request threshold.
func (c *Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMs) * time.Millisecond
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log_level: %q", s)
	}
	return level, nil
}
