package database

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL is the networked pooled backend.
//
// It owns a bounded pool of connections. The pool itself is the only
// shared mutable state; a checked-out member is exclusively owned by the
// caller holding the WithConn scope until release.
type PostgreSQL struct {
	pool   *pgxpool.Pool
	closed atomic.Bool
}

// openPostgreSQL opens the connection pool described by cfg and verifies
// connectivity with a ping. It fails fast: a pool that cannot be opened or
// reached is returned as an error, never half-constructed.
func openPostgreSQL(ctx context.Context, cfg PostgreSQLConfig) (*PostgreSQL, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.connString())
	if err != nil {
		return nil, fmt.Errorf("parsing pool configuration: %w", err)
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	return &PostgreSQL{pool: pool}, nil
}

// connString renders the configuration as a keyword/value conninfo string.
// Empty optional fields are omitted so the driver's defaults apply.
func (cfg PostgreSQLConfig) connString() string {
	parts := []string{
		fmt.Sprintf("host=%s", cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("dbname=%s", cfg.Database),
	}
	if cfg.User != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}
	if cfg.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
	}
	return strings.Join(parts, " ")
}

// Pool exposes the raw pool in case the Conn API is insufficient.
func (p *PostgreSQL) Pool() *pgxpool.Pool {
	return p.pool
}

// Close releases the entire pool, waiting for checked-out members to be
// returned. Closing twice is not an error; the second call does nothing.
// Any later operation fails with ErrClosed.
func (p *PostgreSQL) Close(context.Context) error {
	if p.closed.Swap(true) {
		return nil
	}
	p.pool.Close()
	return nil
}

// WithConn draws one pool member, opens a transaction on it, and runs fn
// with a Conn bound to that transaction.
//
// The transaction is committed only when fn returns nil. When fn returns
// an error the transaction is rolled back and the error propagates
// unchanged. The pool member is released on every exit path, including
// panic and context cancellation, so an aborted scope never leaks a
// member.
func (p *PostgreSQL) WithConn(ctx context.Context, fn func(context.Context, Conn) error) error {
	if p.closed.Load() {
		return ErrClosed
	}

	member, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring pool connection: %w", err)
	}
	defer member.Release()

	tx, err := member.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// No-op after a successful commit; rolls back on error and panic paths.
	defer tx.Rollback(ctx) //nolint:errcheck // Best effort rollback

	conn := &postgresConn{tx: tx}
	defer conn.invalidate()

	if err := fn(ctx, conn); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// postgresConn is a Conn bound to one transaction on one pool member.
type postgresConn struct {
	tx       pgx.Tx
	cur      cursor
	released bool
}

// invalidate makes every subsequent method fail with ErrConnReleased.
func (c *postgresConn) invalidate() {
	c.released = true
	c.tx = nil
	c.cur = cursor{}
}

func (c *postgresConn) Execute(ctx context.Context, query string, params ...any) error {
	if c.released {
		return ErrConnReleased
	}

	rewritten := rewritePlaceholders(query)

	rows, err := c.tx.Query(ctx, rewritten, params...)
	if err != nil {
		return &QueryError{Query: query, Err: err}
	}

	buffered, err := bufferRows(rows)
	if err != nil {
		return &QueryError{Query: query, Err: err}
	}

	c.cur.set(buffered)
	return nil
}

func (c *postgresConn) ExecuteMany(ctx context.Context, query string, paramSeq [][]any) error {
	if c.released {
		return ErrConnReleased
	}

	rewritten := rewritePlaceholders(query)

	for _, params := range paramSeq {
		if _, err := c.tx.Exec(ctx, rewritten, params...); err != nil {
			return &QueryError{Query: query, Err: err}
		}
	}

	// Batched statements leave nothing to fetch.
	c.cur.set(nil)
	return nil
}

func (c *postgresConn) FetchOne(context.Context) (Row, bool, error) {
	if c.released {
		return Row{}, false, ErrConnReleased
	}
	row, ok := c.cur.next()
	return row, ok, nil
}

func (c *postgresConn) FetchAll(context.Context) ([]Row, error) {
	if c.released {
		return nil, ErrConnReleased
	}
	return c.cur.drain(), nil
}

func (c *postgresConn) FetchMany(_ context.Context, size int) ([]Row, error) {
	if c.released {
		return nil, ErrConnReleased
	}
	return c.cur.take(size), nil
}

// bufferRows materialises a pgx result set into Rows and closes it.
// Statements without a result set yield an empty buffer.
func bufferRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, newRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
