package database

import (
	"errors"
	"fmt"
)

// Sentinel errors for database lifecycle violations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, database.ErrClosed) {
//	    // Handle operations against a closed database
//	}
var (
	// ErrClosed indicates an operation was attempted after Close.
	ErrClosed = errors.New("database: closed")

	// ErrNoBackend indicates a connection was requested from the "none"
	// backend, which never yields connections.
	ErrNoBackend = errors.New("database: no backend configured")

	// ErrConnReleased indicates a Conn was used after its scope exited.
	ErrConnReleased = errors.New("database: connection used after release")
)

// ConfigError reports an unrecognised backend type discriminator.
// It is returned before any backend construction begins.
type ConfigError struct {
	// Value is the offending type tag from the configuration.
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("database: unsupported backend type %q (expected none, sqlite, or postgresql)", e.Value)
}

// DependencyError reports that the driver required by the selected backend
// is not available in this build. The message carries remediation steps
// rather than a bare linker or registration failure.
type DependencyError struct {
	// Driver is the name of the missing driver.
	Driver string

	// Hint describes how to make the driver available.
	Hint string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("database: driver %q is not available: %s", e.Driver, e.Hint)
}

// QueryError wraps a statement execution or fetch failure at the driver
// boundary. The driver's native diagnostic is preserved as the cause and
// never masked.
type QueryError struct {
	// Query is the statement text that failed.
	Query string

	// Err is the driver's original error.
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: query failed: %v", e.Err)
}

// Unwrap returns the driver's original error for errors.Is / errors.As.
func (e *QueryError) Unwrap() error {
	return e.Err
}
