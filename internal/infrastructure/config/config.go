package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database type discriminators accepted in the configuration file.
const (
	// DatabaseNone disables database features entirely.
	DatabaseNone = "none"

	// DatabaseSQLite selects the embedded single-file backend.
	DatabaseSQLite = "sqlite"

	// DatabasePostgreSQL selects the networked pooled backend.
	DatabasePostgreSQL = "postgresql"
)

// Config is the root configuration structure for the Riemann data core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects and configures the database backend.
//
// Type is the backend discriminator: "none", "sqlite", or "postgresql".
// Only the section matching Type is consulted; the other section may be
// left at its zero value.
type DatabaseConfig struct {
	Type       string           `yaml:"type"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
}

// SQLiteConfig contains embedded backend settings.
type SQLiteConfig struct {
	// Database is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Database string `yaml:"database"`

	// WALMode enables Write-Ahead Logging for better concurrent access.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	// Prevents "database is locked" errors under contention.
	BusyTimeout int `yaml:"busy_timeout"`
}

// PostgreSQLConfig contains pooled backend settings.
//
// Every accepted key is a named field validated at this boundary rather
// than an opaque mapping forwarded to the pool constructor. This narrows
// pass-through flexibility on purpose: unknown keys fail loudly here
// instead of silently reaching the driver.
type PostgreSQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	// MinConns and MaxConns bound the connection pool.
	// Zero values defer to the driver's defaults.
	MinConns int `yaml:"min_conns"`
	MaxConns int `yaml:"max_conns"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: RIEMANN_SECTION_KEY
// For example: RIEMANN_DATABASE_TYPE, RIEMANN_POSTGRESQL_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type: DatabaseNone,
			SQLite: SQLiteConfig{
				Database:    "./data/riemann.db",
				WALMode:     true,
				BusyTimeout: 5,
			},
			PostgreSQL: PostgreSQLConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "prefer",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: RIEMANN_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("RIEMANN_DATABASE_TYPE"); v != "" {
		cfg.Database.Type = v
	}
	if v := os.Getenv("RIEMANN_SQLITE_DATABASE"); v != "" {
		cfg.Database.SQLite.Database = v
	}

	// PostgreSQL - credentials are the usual deployment-time overrides
	if v := os.Getenv("RIEMANN_POSTGRESQL_HOST"); v != "" {
		cfg.Database.PostgreSQL.Host = v
	}
	if v := os.Getenv("RIEMANN_POSTGRESQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.PostgreSQL.Port = port
		}
	}
	if v := os.Getenv("RIEMANN_POSTGRESQL_USER"); v != "" {
		cfg.Database.PostgreSQL.User = v
	}
	if v := os.Getenv("RIEMANN_POSTGRESQL_PASSWORD"); v != "" {
		cfg.Database.PostgreSQL.Password = v
	}
	if v := os.Getenv("RIEMANN_POSTGRESQL_DBNAME"); v != "" {
		cfg.Database.PostgreSQL.Database = v
	}

	// Logging
	if v := os.Getenv("RIEMANN_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Type {
	case DatabaseNone:
		// Nothing to check; database features are disabled.
	case DatabaseSQLite:
		if c.Database.SQLite.Database == "" {
			errs = append(errs, "database.sqlite.database is required when database.type is sqlite")
		}
		if c.Database.SQLite.BusyTimeout < 0 {
			errs = append(errs, "database.sqlite.busy_timeout must not be negative")
		}
	case DatabasePostgreSQL:
		if c.Database.PostgreSQL.Host == "" {
			errs = append(errs, "database.postgresql.host is required when database.type is postgresql")
		}
		if c.Database.PostgreSQL.Database == "" {
			errs = append(errs, "database.postgresql.dbname is required when database.type is postgresql")
		}
		if p := c.Database.PostgreSQL.Port; p < 1 || p > 65535 {
			errs = append(errs, "database.postgresql.port must be between 1 and 65535")
		}
		if c.Database.PostgreSQL.MinConns < 0 || c.Database.PostgreSQL.MaxConns < 0 {
			errs = append(errs, "database.postgresql pool bounds must not be negative")
		}
		if c.Database.PostgreSQL.MaxConns > 0 && c.Database.PostgreSQL.MinConns > c.Database.PostgreSQL.MaxConns {
			errs = append(errs, "database.postgresql.min_conns must not exceed max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.type %q is not one of none, sqlite, postgresql", c.Database.Type))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
