package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith is Load with overrides (typically command-line flags) applied
// after the environment and before validation.
func LoadWith(override func(*Config)) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Source and sink
	switch c.Source.Kind {
	case KindCSV, KindPostgres:
	default:
		errs = append(errs, fmt.Sprintf("SOURCE_KIND (%q) must be one of: csv, postgres", c.Source.Kind))
	}
	switch c.Load.Sink {
	case KindPostgres, KindDuckDB:
	default:
		errs = append(errs, fmt.Sprintf("LOAD_SINK (%q) must be one of: postgres, duckdb", c.Load.Sink))
	}
	if c.Source.Kind == KindCSV && c.Source.DataDir == "" && c.Source.Manifest == "" {
		errs = append(errs, "SOURCE_DATA_DIR or SOURCE_MANIFEST is required for the csv source")
	}
	if c.Load.Sink == KindDuckDB && c.Load.DuckDBPath == "" {
		errs = append(errs, "DUCKDB_PATH is required for the duckdb sink")
	}
	if c.Source.BronzeSchema == "" {
		errs = append(errs, "BRONZE_SCHEMA must not be empty")
	}
	if c.Load.SilverSchema == "" {
		errs = append(errs, "SILVER_SCHEMA must not be empty")
	}

	// Database validation
	if c.NeedsDatabase() {
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when the source or sink is postgres")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "API_KEYS is required when REQUIRE_API_KEY is true")
	}

	// Load validation
	if c.Load.MaxConcurrent <= 0 {
		errs = append(errs, "LOAD_MAX_CONCURRENT must be positive")
	}
	if c.Load.Timeout <= 0 {
		errs = append(errs, "LOAD_TIMEOUT must be positive")
	}
	if c.Load.BatchSize <= 0 {
		errs = append(errs, "LOAD_BATCH_SIZE must be positive")
	}

	// Run validation
	if c.Run.MaxConcurrent <= 0 {
		errs = append(errs, "RUN_MAX_CONCURRENT must be positive")
	}
	if c.Run.MaxWaitTime < 0 {
		errs = append(errs, "RUN_MAX_WAIT_TIME must be non-negative")
	}
	if c.Run.Interval < 0 {
		errs = append(errs, "RUN_INTERVAL must be non-negative")
	}
	if c.Run.AsOf != "" {
		if _, err := time.Parse(AsOfDate, c.Run.AsOf); err != nil {
			errs = append(errs, fmt.Sprintf("RUN_AS_OF (%q) must be a YYYY-MM-DD date", c.Run.AsOf))
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Source: {Kind: %q, DataDir: %q}, ", c.Source.Kind, c.Source.DataDir))
	b.WriteString(fmt.Sprintf("Load: {Sink: %q, MaxConcurrent: %d, FailFast: %v, UseCopy: %v}, ",
		c.Load.Sink, c.Load.MaxConcurrent, c.Load.FailFast, c.Load.UseCopy))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
