package duckpond

import (
	"database/sql/driver"
	"io"
)

// Rows adapts a materialized QueryResult to the database/sql/driver.Rows
// iterator interface.
type Rows struct {
	columns []string
	rows    []Row
	next    int
}

func newRows(result *QueryResult) *Rows {
	return &Rows{
		columns: result.Columns(),
		rows:    result.FetchAll(),
	}
}

// Columns returns the names of the columns. The number of
// columns of the result is inferred from the length of the
// slice. If a particular column name isn't known, an empty
// string should be returned for that entry.
func (r *Rows) Columns() []string {
	return r.columns
}

// Close closes the rows iterator.
func (r *Rows) Close() error {
	return nil
}

// Next is called to populate the next row of data into
// the provided slice. The provided slice will be the same
// size as the Columns() are wide.
//
// Next should return io.EOF when there are no more rows.
func (r *Rows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	aRow := r.rows[r.next]
	r.next++

	for i, name := range r.columns {
		if i >= len(dest) {
			break
		}
		dest[i] = aRow[name].driverValue()
	}
	return nil
}
