package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLite backend constants.
const (
	// sqliteDriverName is the name the driver registers with database/sql.
	sqliteDriverName = "sqlite3"

	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// SQLite is the embedded single-file backend.
//
// It wraps exactly one physical connection in autocommit mode. Only one
// Conn should be in logical use at a time from one instance; concurrent
// callers must serialise externally or each open their own Database.
type SQLite struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// openSQLite opens the file-backed connection described by cfg.
//
// It performs the following setup:
//  1. Verifies the driver is present in this build
//  2. Creates the database directory if it doesn't exist
//  3. Opens the database file (creates if not present) in autocommit mode
//  4. Configures busy timeout and optional WAL mode
//  5. Restricts the connection pool to the single physical connection
//  6. Verifies the connection with a ping
func openSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLite, error) {
	if !slices.Contains(sql.Drivers(), sqliteDriverName) {
		return nil, &DependencyError{
			Driver: sqliteDriverName,
			Hint:   "rebuild with CGO_ENABLED=1 so github.com/mattn/go-sqlite3 is compiled in",
		}
	}

	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// Build connection string with pragmas
	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)

	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open(sqliteDriverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One physical connection: SQLite supports a single writer, and the
	// Conn cursor model assumes one underlying handle.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// Owner read/write only. File might not exist until the first write,
	// so an error here is fine.
	_ = os.Chmod(cfg.Path, filePermissions)

	return &SQLite{
		db:   sqlDB,
		path: cfg.Path,
	}, nil
}

// Path returns the filesystem path to the database file.
func (s *SQLite) Path() string {
	return s.path
}

// DB exposes the raw handle in case the Conn API is insufficient.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close releases the file-backed connection. Closing twice is not an
// error; the second call does nothing. Any later operation fails with
// ErrClosed.
func (s *SQLite) Close(context.Context) error {
	if s.closed.Swap(true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// WithConn runs fn with a Conn bound to the single underlying handle.
// The Conn is invalidated on every exit path, including panic and context
// cancellation inside fn.
func (s *SQLite) WithConn(ctx context.Context, fn func(context.Context, Conn) error) error {
	if s.closed.Load() {
		return ErrClosed
	}

	conn := &sqliteConn{db: s.db}
	defer conn.invalidate()

	return fn(ctx, conn)
}

// sqliteConn is a Conn over the embedded backend's single handle.
type sqliteConn struct {
	db       *sql.DB
	cur      cursor
	released bool
}

// invalidate makes every subsequent method fail with ErrConnReleased.
func (c *sqliteConn) invalidate() {
	c.released = true
	c.db = nil
	c.cur = cursor{}
}

func (c *sqliteConn) Execute(ctx context.Context, query string, params ...any) error {
	if c.released {
		return ErrConnReleased
	}

	rows, err := c.db.QueryContext(ctx, query, params...)
	if err != nil {
		return &QueryError{Query: query, Err: err}
	}

	buffered, err := bufferSQLRows(rows)
	if err != nil {
		return &QueryError{Query: query, Err: err}
	}

	c.cur.set(buffered)
	return nil
}

func (c *sqliteConn) ExecuteMany(ctx context.Context, query string, paramSeq [][]any) error {
	if c.released {
		return ErrConnReleased
	}

	for _, params := range paramSeq {
		if _, err := c.db.ExecContext(ctx, query, params...); err != nil {
			return &QueryError{Query: query, Err: err}
		}
	}

	// Batched statements leave nothing to fetch.
	c.cur.set(nil)
	return nil
}

func (c *sqliteConn) FetchOne(context.Context) (Row, bool, error) {
	if c.released {
		return Row{}, false, ErrConnReleased
	}
	row, ok := c.cur.next()
	return row, ok, nil
}

func (c *sqliteConn) FetchAll(context.Context) ([]Row, error) {
	if c.released {
		return nil, ErrConnReleased
	}
	return c.cur.drain(), nil
}

func (c *sqliteConn) FetchMany(_ context.Context, size int) ([]Row, error) {
	if c.released {
		return nil, ErrConnReleased
	}
	return c.cur.take(size), nil
}

// bufferSQLRows materialises a database/sql result set into Rows and
// closes it. Statements without a result set (INSERT, CREATE, ...) yield
// an empty buffer.
func bufferSQLRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close() //nolint:errcheck // Err() below reports real failures

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, newRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
