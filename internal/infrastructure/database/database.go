package database

import "context"

// Backend type discriminators recognised by Open.
const (
	// TypeNone disables database features.
	TypeNone = "none"

	// TypeSQLite selects the embedded single-file backend.
	TypeSQLite = "sqlite"

	// TypePostgreSQL selects the networked pooled backend.
	TypePostgreSQL = "postgresql"
)

// Config selects and configures the database backend.
// These map to the database section of config.yaml.
type Config struct {
	// Type is the backend discriminator: "none", "sqlite", or "postgresql".
	Type string

	// SQLite configures the embedded backend; consulted only when
	// Type is "sqlite".
	SQLite SQLiteConfig

	// PostgreSQL configures the pooled backend; consulted only when
	// Type is "postgresql".
	PostgreSQL PostgreSQLConfig
}

// SQLiteConfig contains embedded backend settings.
type SQLiteConfig struct {
	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging for better concurrent access.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	// Prevents "database is locked" errors under contention.
	BusyTimeout int
}

// PostgreSQLConfig contains pooled backend settings.
// Every field is named and validated up front rather than forwarded as an
// opaque mapping to the pool constructor.
type PostgreSQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// MinConns and MaxConns bound the connection pool.
	// Zero values defer to the driver's defaults.
	MinConns int
	MaxConns int
}

// Database is the uniform interface over the configured backend.
//
// Exactly one Database is created per process in normal operation, by the
// composition root, via Open. Implementations own exactly one backend
// resource: a single file-backed connection (SQLite), a pool of network
// connections (PostgreSQL), or nothing at all (NoDatabase).
//
// Lifecycle: alive from construction until Close. Close is idempotent;
// closing twice is not an error, but any operation after Close fails with
// ErrClosed.
type Database interface {
	// Close releases all resources owned by the backend.
	// It is safe to call more than once.
	Close(ctx context.Context) error

	// WithConn acquires a Conn, runs fn with it, and releases it on every
	// exit path: clean return, error return, panic, and context
	// cancellation. The Conn must not escape fn; it is invalidated at scope
	// exit and fails fast with ErrConnReleased if reused.
	//
	// For the pooled backend, fn runs inside a transaction that is
	// committed only when fn returns nil; on error the transaction is
	// rolled back and the error propagates. The pool member is returned to
	// the pool in either case.
	WithConn(ctx context.Context, fn func(context.Context, Conn) error) error
}

// Open constructs and initialises the backend selected by cfg.Type.
//
// Recognised type tags are "none", "sqlite", and "postgresql". Any other
// value fails with *ConfigError before any backend construction starts.
// A selected backend whose driver is not present in the build fails with
// *DependencyError.
//
// Live backends verify connectivity before returning, so a failure here is
// fatal configuration or environment trouble, not something to retry.
func Open(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case TypeNone:
		return &NoDatabase{}, nil
	case TypeSQLite:
		return openSQLite(ctx, cfg.SQLite)
	case TypePostgreSQL:
		return openPostgreSQL(ctx, cfg.PostgreSQL)
	default:
		return nil, &ConfigError{Value: cfg.Type}
	}
}
