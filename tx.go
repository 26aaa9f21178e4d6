package duckpond

import "context"

// Tx implements the database/sql/driver.Tx interface by issuing the
// engine's transaction-control statements; the subprocess is the only
// holder of transaction state.
type Tx struct {
	conn *Connection
	ctx  context.Context
}

func (tx Tx) Commit() error {
	return tx.conn.Commit(tx.ctx)
}

func (tx Tx) Rollback() error {
	return tx.conn.Rollback(tx.ctx)
}
