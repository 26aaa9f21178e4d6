package duckpond

// sqlResult implements the database/sql/driver.Result interface.
type sqlResult struct {
	rowsAffected int64
}

// newSQLResult derives the affected-row count from the engine's output for
// mutating statements, which report a single-row "Count" document.
func newSQLResult(result *QueryResult) sqlResult {
	if aRow, ok := result.FetchOne(); ok {
		if count, ok := aRow["Count"]; ok {
			if n, ok := count.Int64(); ok {
				return sqlResult{rowsAffected: n}
			}
		}
	}
	return sqlResult{}
}

// LastInsertId returns the database's auto-generated ID
// after, for example, an INSERT into a table with primary
// key. The engine does not report one through this protocol.
func (r sqlResult) LastInsertId() (int64, error) {
	return 0, nil
}

// RowsAffected returns the number of rows affected by the
// query.
func (r sqlResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
