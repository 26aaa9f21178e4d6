package duckpond

import (
	"context"
	"database/sql/driver"
	"fmt"
)

// Stmt implements the database/sql/driver.Stmt interface. Statements are
// plain query text; the engine protocol offers no placeholder binding, so
// any arguments are rejected.
type Stmt struct {
	conn  *Conn
	query string
}

// Close closes the statement.
func (s *Stmt) Close() error {
	return nil
}

// NumInput returns the number of placeholder parameters.
//
// NumInput may also return -1, if the driver doesn't know
// its number of placeholders. In that case, the sql package
// will not sanity check Exec or Query argument counts.
func (s *Stmt) NumInput() int {
	return -1
}

// Exec executes a query that doesn't return rows, such
// as an INSERT or UPDATE.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("query arguments are not supported")
	}
	return s.conn.ExecContext(context.Background(), s.query, nil)
}

// Query executes a query that may return rows, such as a
// SELECT.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("query arguments are not supported")
	}
	return s.conn.QueryContext(context.Background(), s.query, nil)
}
