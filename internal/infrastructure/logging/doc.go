// Package logging provides structured logging for the Riemann data core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - File, stdout, or stderr output destinations
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"               # debug, info, warn, error
//	  format: "json"              # json, text
//	  output: "stdout"            # stdout, stderr, or a file path
//
// # Usage
//
//	logger, err := logging.New(cfg.Logging, "1.0.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
//	logger.Info("starting service", "backend", cfg.Database.Type)
//
// # Security
//
// Never log secrets, tokens, passwords, or connection strings containing
// credentials.
package logging
