package database

// Row is an ordered mapping from column name to a dynamically-typed scalar
// value. Both backends produce the same Row shape regardless of their native
// row representation.
//
// A Row is produced fresh per fetch call and must be treated as immutable
// once returned. Value types are whatever the driver yields (string, int64,
// float64, []byte, nil, ...); no coercion is applied.
type Row struct {
	columns []string
	values  []any
}

// newRow builds a Row over the given column names and values.
// The slices are owned by the Row after the call.
func newRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r.columns)
}

// Columns returns the column names in result-set order.
// The returned slice is a copy and safe to modify.
func (r Row) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Get returns the value of the named column and whether the column exists.
// Column names are unique within a row; the first match wins.
func (r Row) Get(name string) (any, bool) {
	for i, col := range r.columns {
		if col == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Value returns the value at the given column index.
// It panics if the index is out of range, matching slice semantics.
func (r Row) Value(i int) any {
	return r.values[i]
}
