// Riemann data core
//
// This is the main entry point for the Riemann data core, the storage
// layer behind the Riemann toolbox. It owns exactly one database backend
// per process - embedded, pooled, or none - and hands scoped connections
// to the callers composed on top of it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zeta-Labs-HQ/Riemann-s-toolbox/internal/infrastructure/config"
	"github.com/Zeta-Labs-HQ/Riemann-s-toolbox/internal/infrastructure/database"
	"github.com/Zeta-Labs-HQ/Riemann-s-toolbox/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Riemann data core",
		"version", version,
		"commit", commit,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log, err = logging.New(cfg.Logging, version)
	if err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}
	defer log.Close() //nolint:errcheck // Best effort flush on shutdown
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the configured database backend
	db, err := database.Open(ctx, databaseConfig(cfg))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(context.Background()); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database ready", "type", cfg.Database.Type)

	// Verify the live backends answer queries before declaring readiness
	if cfg.Database.Type != config.DatabaseNone {
		if err := healthCheck(ctx, db); err != nil {
			return fmt.Errorf("database health check: %w", err)
		}
		log.Info("database health check passed")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Riemann data core stopped")
	return nil
}

// databaseConfig maps the loaded configuration onto the database layer's
// own config struct. The two are kept separate so the database package
// never depends on the YAML boundary.
func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Type: cfg.Database.Type,
		SQLite: database.SQLiteConfig{
			Path:        cfg.Database.SQLite.Database,
			WALMode:     cfg.Database.SQLite.WALMode,
			BusyTimeout: cfg.Database.SQLite.BusyTimeout,
		},
		PostgreSQL: database.PostgreSQLConfig{
			Host:     cfg.Database.PostgreSQL.Host,
			Port:     cfg.Database.PostgreSQL.Port,
			User:     cfg.Database.PostgreSQL.User,
			Password: cfg.Database.PostgreSQL.Password,
			Database: cfg.Database.PostgreSQL.Database,
			SSLMode:  cfg.Database.PostgreSQL.SSLMode,
			MinConns: cfg.Database.PostgreSQL.MinConns,
			MaxConns: cfg.Database.PostgreSQL.MaxConns,
		},
	}
}

// healthCheck verifies the backend answers a trivial query.
func healthCheck(ctx context.Context, db database.Database) error {
	return db.WithConn(ctx, func(ctx context.Context, conn database.Conn) error {
		return conn.Execute(ctx, "SELECT 1")
	})
}

// getConfigPath returns the configuration file path.
// Uses the RIEMANN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RIEMANN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
