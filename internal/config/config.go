// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Source and sink kinds.
const (
	KindCSV      = "csv"
	KindPostgres = "postgres"
	KindDuckDB   = "duckdb"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Security SecurityConfig
	Database DatabaseConfig
	Source   SourceConfig
	Load     LoadConfig
	Run      RunConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is 0 by default: a full run can outlast any fixed limit.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig holds API access settings.
type SecurityConfig struct {
	// RequireAPIKey rejects /api requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies lists CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Required whenever the source
	// or the sink is postgres.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SourceConfig selects where bronze rows are read from.
type SourceConfig struct {
	// Kind is csv or postgres (default: csv)
	Kind string `env:"SOURCE_KIND" default:"csv"`

	// DataDir holds the source_crm/ and source_erp/ extracts (default: datasets)
	DataDir string `env:"SOURCE_DATA_DIR" default:"datasets"`

	// Manifest is an optional YAML file overriding DataDir and file paths
	Manifest string `env:"SOURCE_MANIFEST"`

	// BronzeSchema is the Postgres schema of the raw tables (default: bronze)
	BronzeSchema string `env:"BRONZE_SCHEMA" default:"bronze"`
}

// LoadConfig holds sink and per-table load settings.
type LoadConfig struct {
	// Sink is postgres or duckdb (default: postgres)
	Sink string `env:"LOAD_SINK" default:"postgres"`

	// SilverSchema is the target schema (default: silver)
	SilverSchema string `env:"SILVER_SCHEMA" default:"silver"`

	// MaxConcurrent is how many tables load in parallel (default: 3)
	MaxConcurrent int `env:"LOAD_MAX_CONCURRENT" default:"3"`

	// FailFast cancels the remaining tables after the first failure (default: false)
	FailFast bool `env:"LOAD_FAIL_FAST" default:"false"`

	// Timeout bounds a single table load (default: 10m)
	Timeout time.Duration `env:"LOAD_TIMEOUT" default:"10m"`

	// UseCopy selects the COPY protocol for the postgres sink (default: true)
	UseCopy bool `env:"LOAD_USE_COPY" default:"true"`

	// BatchSize is INSERTs per round trip when COPY is off (default: 500)
	BatchSize int `env:"LOAD_BATCH_SIZE" default:"500"`

	// DuckDBPath is the database file for the duckdb sink (default: warehouse.duckdb)
	DuckDBPath string `env:"DUCKDB_PATH" default:"warehouse.duckdb"`
}

// RunConfig bounds concurrent pipeline runs.
type RunConfig struct {
	// MaxConcurrent is the number of runs allowed at once (default: 1)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"1"`

	// MaxWaitTime is how long a run waits for a free slot (default: 5s)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"5s"`

	// AsOf fixes the reference date (YYYY-MM-DD) for the future birth date
	// rule. Empty means today.
	AsOf string `env:"RUN_AS_OF"`

	// Interval schedules a full silver rebuild while serving (default: 0, off)
	Interval time.Duration `env:"RUN_INTERVAL" default:"0s"`
}

// AsOfDate is the layout of RunConfig.AsOf.
const AsOfDate = "2006-01-02"

// AsOfTime returns the configured reference date, or now when unset.
func (c *RunConfig) AsOfTime(now time.Time) time.Time {
	if c.AsOf == "" {
		return now
	}
	t, err := time.Parse(AsOfDate, c.AsOf)
	if err != nil {
		return now
	}
	return t
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Textfile, when set, receives a metrics dump after each CLI run
	Textfile string `env:"METRICS_TEXTFILE"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// NeedsDatabase reports whether the configured source or sink is postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Source.Kind == KindPostgres || c.Load.Sink == KindPostgres
}
