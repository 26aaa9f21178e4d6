package duckpond

import "sort"

// Row maps column names to their values for one result row.
type Row map[string]Value

// Get returns the named column's value and whether the column exists.
func (r Row) Get(name string) (Value, bool) {
	v, ok := r[name]
	return v, ok
}

// QueryResult is the immutable outcome of one completed statement. For
// statements that produce no result set the row slice is empty and the
// count is zero.
type QueryResult struct {
	rows    []Row
	count   int
	columns []string
}

// newQueryResult builds a result from the engine's decoded output rows.
// Column order is not carried by the engine's record documents, so stored
// columns stay nil and are derived on demand.
func newQueryResult(raw []map[string]any) *QueryResult {
	rows := make([]Row, 0, len(raw))
	for _, record := range raw {
		aRow := make(Row, len(record))
		for name, value := range record {
			aRow[name] = newValue(value)
		}
		rows = append(rows, aRow)
	}
	return &QueryResult{rows: rows, count: len(rows)}
}

// FetchAll returns all rows in their original order.
func (r *QueryResult) FetchAll() []Row {
	return r.rows
}

// FetchOne returns the first row, or false for an empty result.
func (r *QueryResult) FetchOne() (Row, bool) {
	if len(r.rows) == 0 {
		return nil, false
	}
	return r.rows[0], true
}

// FetchMany returns up to n rows from the front. A negative n is clamped
// to zero.
func (r *QueryResult) FetchMany(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(r.rows) {
		n = len(r.rows)
	}
	return r.rows[:n]
}

// RowCount returns the number of rows in the result.
func (r *QueryResult) RowCount() int {
	return r.count
}

// Columns returns the result's column names. When the engine did not report
// them explicitly they are derived from the first row's key set in sorted
// order; callers that need the query's projection order should carry their
// own column lists.
func (r *QueryResult) Columns() []string {
	if r.columns != nil {
		return r.columns
	}
	if len(r.rows) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.rows[0]))
	for name := range r.rows[0] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tuples projects each row into a positional value slice following the
// order reported by Columns.
func (r *QueryResult) Tuples() [][]Value {
	columns := r.Columns()
	tuples := make([][]Value, 0, len(r.rows))
	for _, aRow := range r.rows {
		tuple := make([]Value, 0, len(columns))
		for _, name := range columns {
			tuple = append(tuple, aRow[name])
		}
		tuples = append(tuples, tuple)
	}
	return tuples
}
