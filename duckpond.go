// Package duckpond is a client for the DuckDB database engine that manages
// the engine CLI binary as a subprocess instead of linking it. SQL is piped
// to the subprocess and its JSON output is reassembled into typed results.
// On top of the synchronous session API the package offers Relation, a lazy
// composable query builder, and a database/sql driver.
package duckpond

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/duckpond/duckpond/internal/engine"
	"github.com/duckpond/duckpond/internal/pkg/logging"
	"github.com/duckpond/duckpond/pkg/duckerr"
)

// MemoryLocator opens a transient in-memory database.
const MemoryLocator = engine.MemoryLocator

// Connection is one session against a live engine subprocess. Statements
// submitted through a Connection are executed strictly one at a time in
// submission order; concurrent callers block until their turn.
type Connection struct {
	session *engine.Session
	logger  *zap.Logger
}

// Open starts an engine subprocess for the given database locator and
// returns a session bound to it. The locator is either MemoryLocator or a
// file path, optionally with connection-string parameters (see
// ParseLocator). Options override locator parameters.
func Open(locator string, opts ...Option) (*Connection, error) {
	parsed, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	cfg := connConfig{
		locator:  parsed.Path,
		readOnly: parsed.ReadOnly,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		logConf := logging.DefaultConfig()
		logConf.Level = parsed.ZapLevel()
		logger, err := logConf.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		cfg.logger = logger
	}

	session, err := engine.NewSession(engine.Config{
		Binary:      cfg.binary,
		Locator:     cfg.locator,
		ReadOnly:    cfg.readOnly,
		Quiescence:  cfg.quiescence,
		HardTimeout: cfg.hardTimeout,
		Logger:      cfg.logger,
	})
	if err != nil {
		return nil, duckerr.New(duckerr.KindConnection, "open session: %v", err)
	}

	return &Connection{session: session, logger: cfg.logger}, nil
}

// Execute runs one raw SQL statement and materializes its result. Engine
// failures come back as *duckerr.Error; the session stays usable after an
// engine-level error unless the engine is left in an aborted transaction,
// in which case the caller must issue Rollback before continuing.
func (c *Connection) Execute(ctx context.Context, sql string) (*QueryResult, error) {
	result, err := c.session.Submit(ctx, sql)
	if err != nil {
		return nil, err
	}
	if result.Forced {
		c.logger.Debug("statement resolved by timeout fallback", zap.String("sql", sql))
	}
	return newQueryResult(result.Rows), nil
}

// FetchAll executes sql and returns all result rows.
func (c *Connection) FetchAll(ctx context.Context, sql string) ([]Row, error) {
	result, err := c.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	return result.FetchAll(), nil
}

// FetchOne executes sql and returns the first result row, or false when the
// result is empty.
func (c *Connection) FetchOne(ctx context.Context, sql string) (Row, bool, error) {
	result, err := c.Execute(ctx, sql)
	if err != nil {
		return nil, false, err
	}
	aRow, ok := result.FetchOne()
	return aRow, ok, nil
}

// Begin opens an explicit transaction. The engine subprocess is the sole
// holder of transaction state; the connection tracks nothing client-side.
func (c *Connection) Begin(ctx context.Context) error {
	_, err := c.Execute(ctx, "BEGIN TRANSACTION")
	return err
}

// Commit commits the current transaction.
func (c *Connection) Commit(ctx context.Context) error {
	_, err := c.Execute(ctx, "COMMIT")
	return err
}

// Rollback aborts the current transaction.
func (c *Connection) Rollback(ctx context.Context) error {
	_, err := c.Execute(ctx, "ROLLBACK")
	return err
}

// Checkpoint forces the engine to flush its write-ahead log to disk.
func (c *Connection) Checkpoint(ctx context.Context) error {
	_, err := c.Execute(ctx, "CHECKPOINT")
	return err
}

// Transaction runs fn inside a transaction. The transaction is rolled back
// when fn returns an error or panics, and committed otherwise; a failed
// commit is rolled back and reported. This combinator is the only place the
// library triggers rollback itself - plain Execute calls that fail never do.
func (c *Connection) Transaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err = c.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := c.Rollback(ctx); rbErr != nil {
				c.logger.Warn("rollback after panic failed", zap.Error(rbErr))
			}
			err = fmt.Errorf("transaction body panicked: %v", p)
		}
	}()

	if err = fn(ctx); err != nil {
		if rbErr := c.Rollback(ctx); rbErr != nil {
			c.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err = c.Commit(ctx); err != nil {
		if rbErr := c.Rollback(ctx); rbErr != nil {
			c.logger.Warn("rollback after failed commit failed", zap.Error(rbErr))
		}
		return err
	}

	return nil
}

// PID returns the OS process ID of the engine subprocess.
func (c *Connection) PID() int {
	return c.session.PID()
}

// Close terminates the engine subprocess. Closing an already-closed or
// already-dead connection is a no-op.
func (c *Connection) Close() error {
	return c.session.Close()
}
