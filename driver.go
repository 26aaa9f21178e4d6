package duckpond

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
)

const driverName = "duckpond"

func init() {
	sql.Register(driverName, &Driver{})
}

// Driver implements the database/sql/driver.Driver interface. The data
// source name is a database locator as accepted by Open, so
//
//	db, err := sql.Open("duckpond", "./my.db?readonly=true")
//
// spawns one engine subprocess per pooled connection.
type Driver struct{}

// Open returns a new connection to the database.
func (d *Driver) Open(name string) (driver.Conn, error) {
	conn, err := Open(name)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// Conn implements the database/sql/driver.Conn interface over one engine
// session.
type Conn struct {
	conn *Connection
}

func (c *Conn) Ping(ctx context.Context) error {
	_, err := c.conn.Execute(ctx, "SELECT 1")
	return err
}

// Close terminates the underlying engine subprocess.
//
// Drivers must ensure all network calls made by Close
// do not block indefinitely (e.g. apply a timeout).
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Prepare returns a prepared statement, bound to this connection. The
// engine protocol has no server-side prepare, so the statement simply
// carries the query text.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{conn: c, query: query}, nil
}

// Begin starts and returns a new transaction.
//
// Deprecated: Drivers should implement ConnBeginTx instead (or additionally).
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts and returns a new transaction.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if opts.ReadOnly || opts.Isolation != driver.IsolationLevel(sql.LevelDefault) {
		return nil, fmt.Errorf("transaction options are not supported")
	}
	if err := c.conn.Begin(ctx); err != nil {
		return nil, err
	}
	return &Tx{conn: c.conn, ctx: ctx}, nil
}

// ExecContext executes a query that doesn't return rows.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("query arguments are not supported")
	}
	result, err := c.conn.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	return newSQLResult(result), nil
}

// QueryContext executes a query that may return rows.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("query arguments are not supported")
	}
	result, err := c.conn.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	return newRows(result), nil
}

// Ensure interfaces are implemented
var _ driver.Driver = (*Driver)(nil)
var _ driver.Conn = (*Conn)(nil)
var _ driver.ConnBeginTx = (*Conn)(nil)
var _ driver.ExecerContext = (*Conn)(nil)
var _ driver.QueryerContext = (*Conn)(nil)
var _ driver.Pinger = (*Conn)(nil)
