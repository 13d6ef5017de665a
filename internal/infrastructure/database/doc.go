// Package database provides a uniform interface over the Riemann data
// core's storage backends.
//
// This package manages:
//   - Backend selection from configuration (none, sqlite, postgresql)
//   - Connection and cursor lifecycle behind a single Conn contract
//   - Pool ownership for the networked backend
//   - A normalised Row shape shared by both backends
//
// Three backends implement the Database interface:
//   - NoDatabase: database features disabled; acquiring a Conn fails
//   - SQLite: one file-backed connection, autocommit, no network round-trip
//   - PostgreSQL: a bounded pool of connections; each Conn scope runs in a
//     transaction committed on clean exit only
//
// Error Handling:
//
// The package never retries and never recovers silently. Every failure is
// a typed error the caller can pattern-match: ErrClosed, ErrNoBackend and
// ErrConnReleased sentinels, and the ConfigError, DependencyError and
// QueryError types. QueryError preserves the driver's native diagnostic.
// The package emits no logging of its own; the caller decides what reaches
// an operator.
//
// Concurrency:
//
// All operations take a context and honour cancellation. WithConn releases
// its resources on every exit path, cancellation included. The SQLite
// backend's single physical connection is not safe for interleaved use by
// concurrent callers without external serialisation; the PostgreSQL pool
// is safe to share, and each checked-out member is exclusively owned by
// one scope at a time.
//
// Placeholders:
//
// Parameterised queries use `?` at this boundary on every backend. The
// PostgreSQL backend rewrites `?` to numbered $n placeholders with a
// substitution that is not string-literal aware; query text must not embed
// `?` as literal data (pass it as a parameter instead).
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Type:   database.TypeSQLite,
//	    SQLite: database.SQLiteConfig{Path: "./data/riemann.db", BusyTimeout: 5},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close(ctx)
//
//	err = db.WithConn(ctx, func(ctx context.Context, conn database.Conn) error {
//	    if err := conn.Execute(ctx, "SELECT name FROM guilds WHERE id = ?", guildID); err != nil {
//	        return err
//	    }
//	    row, ok, err := conn.FetchOne(ctx)
//	    ...
//	})
package database
