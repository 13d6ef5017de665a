package database

import "context"

// Conn is a short-lived handle bound to one backend session, acquired via
// Database.WithConn and invalidated when the scope exits.
//
// A Conn holds at most one current cursor: the buffered result set of the
// most recently executed statement. Execute replaces the current cursor;
// the fetch methods consume it in order. Operations issued sequentially by
// one caller are never reordered.
type Conn interface {
	// Execute runs one statement, establishing or replacing the current
	// cursor. A new query always runs, whether or not params are given.
	// Placeholders use `?` regardless of backend.
	Execute(ctx context.Context, query string, params ...any) error

	// ExecuteMany runs the statement once per parameter tuple, in the
	// order given. It leaves an empty current cursor: batched statements
	// produce no readable rows.
	ExecuteMany(ctx context.Context, query string, paramSeq [][]any) error

	// FetchOne returns the next row of the current cursor. The boolean is
	// false when no cursor has been established or the cursor is exhausted.
	FetchOne(ctx context.Context) (Row, bool, error)

	// FetchAll drains and returns all remaining rows of the current cursor,
	// in order. It returns an empty slice when no cursor is established.
	FetchAll(ctx context.Context) ([]Row, error)

	// FetchMany returns up to size rows in cursor order; fewer when the
	// cursor is exhausted, none when no cursor is established or size < 1.
	FetchMany(ctx context.Context, size int) ([]Row, error)
}

// cursor is the buffered result set both backends share.
//
// Results are materialised at Execute time rather than streamed: it keeps
// fetch semantics identical across drivers and frees the underlying driver
// cursor before the next statement runs. Result sets are therefore bounded
// by memory, which matches how this layer is used.
type cursor struct {
	established bool
	rows        []Row
	pos         int
}

// set installs a new buffered result set, replacing any previous one.
func (c *cursor) set(rows []Row) {
	c.established = true
	c.rows = rows
	c.pos = 0
}

// next returns the next pending row, if any.
func (c *cursor) next() (Row, bool) {
	if !c.established || c.pos >= len(c.rows) {
		return Row{}, false
	}
	row := c.rows[c.pos]
	c.pos++
	return row, true
}

// drain returns all pending rows and exhausts the cursor.
func (c *cursor) drain() []Row {
	if !c.established {
		return []Row{}
	}
	rest := c.rows[c.pos:]
	c.pos = len(c.rows)
	out := make([]Row, len(rest))
	copy(out, rest)
	return out
}

// take returns up to size pending rows.
func (c *cursor) take(size int) []Row {
	if !c.established || size < 1 {
		return []Row{}
	}
	end := c.pos + size
	if end > len(c.rows) {
		end = len(c.rows)
	}
	out := make([]Row, end-c.pos)
	copy(out, c.rows[c.pos:end])
	c.pos = end
	return out
}
