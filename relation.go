package duckpond

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Relation is an immutable, not-yet-executed query. Every transformation
// wraps the current SQL in a derived subquery and returns a new Relation;
// nothing touches the engine until one of the materializing calls. The SQL
// text is always a complete, independently executable query.
type Relation struct {
	conn  *Connection
	sql   string
	alias string
}

// Table returns a Relation selecting everything from the named table.
func (c *Connection) Table(name string) *Relation {
	return &Relation{
		conn:  c,
		sql:   fmt.Sprintf("SELECT * FROM %s", name),
		alias: name,
	}
}

// Query wraps arbitrary SQL as a Relation.
func (c *Connection) Query(sql string) *Relation {
	return &Relation{conn: c, sql: sql}
}

// SQL returns the relation's current SQL text.
func (r *Relation) SQL() string {
	return r.sql
}

// Alias returns the relation's display alias, if any.
func (r *Relation) Alias() string {
	return r.alias
}

// As returns a copy of the relation under an explicit alias. The alias is
// used to name this side of a join, overriding the heuristic that scans the
// join condition for table.column references.
func (r *Relation) As(alias string) *Relation {
	return &Relation{conn: r.conn, sql: r.sql, alias: alias}
}

func (r *Relation) derive(sql string) *Relation {
	return &Relation{conn: r.conn, sql: sql, alias: r.alias}
}

// Project narrows the relation to the given columns or expressions.
func (r *Relation) Project(columns ...string) *Relation {
	return r.derive(fmt.Sprintf("SELECT %s FROM (%s) AS _projection", strings.Join(columns, ", "), r.sql))
}

// Filter keeps only rows matching the predicate. Chained filters nest and
// combine like a single AND-ed predicate.
func (r *Relation) Filter(predicate string) *Relation {
	return r.derive(fmt.Sprintf("SELECT * FROM (%s) AS _filter WHERE %s", r.sql, predicate))
}

// Limit caps the relation at n rows.
func (r *Relation) Limit(n int) *Relation {
	return r.derive(fmt.Sprintf("SELECT * FROM (%s) AS _limit LIMIT %d", r.sql, n))
}

// Order sorts the relation by the given ORDER BY specification, e.g.
// "id DESC, name".
func (r *Relation) Order(spec string) *Relation {
	return r.derive(fmt.Sprintf("SELECT * FROM (%s) AS _order ORDER BY %s", r.sql, spec))
}

// Distinct eliminates duplicate rows.
func (r *Relation) Distinct() *Relation {
	return r.derive(fmt.Sprintf("SELECT DISTINCT * FROM (%s) AS _distinct", r.sql))
}

// Aggregate collapses the relation to the given aggregate expressions.
// With a non-empty groupBy the grouping columns are projected alongside the
// aggregates; without one the result is a single row.
func (r *Relation) Aggregate(expressions, groupBy string) *Relation {
	if groupBy == "" {
		return r.derive(fmt.Sprintf("SELECT %s FROM (%s) AS _aggregate", expressions, r.sql))
	}
	return r.derive(fmt.Sprintf(
		"SELECT %s, %s FROM (%s) AS _aggregate GROUP BY %s", groupBy, expressions, r.sql, groupBy))
}

// Count is shorthand for Aggregate("count(*)", "").
func (r *Relation) Count() *Relation { return r.Aggregate("count(*)", "") }

// Sum is shorthand for a single-column sum aggregate.
func (r *Relation) Sum(column string) *Relation { return r.Aggregate(fmt.Sprintf("sum(%s)", column), "") }

// Avg is shorthand for a single-column average aggregate.
func (r *Relation) Avg(column string) *Relation { return r.Aggregate(fmt.Sprintf("avg(%s)", column), "") }

// Min is shorthand for a single-column minimum aggregate.
func (r *Relation) Min(column string) *Relation { return r.Aggregate(fmt.Sprintf("min(%s)", column), "") }

// Max is shorthand for a single-column maximum aggregate.
func (r *Relation) Max(column string) *Relation { return r.Aggregate(fmt.Sprintf("max(%s)", column), "") }

func (r *Relation) combine(other *Relation, operator string) *Relation {
	return r.derive(fmt.Sprintf("(%s) %s (%s)", r.sql, operator, other.sql))
}

// Union combines two relations, eliminating duplicates. Both operands must
// share a session.
func (r *Relation) Union(other *Relation) *Relation {
	return r.combine(other, "UNION")
}

// Intersect keeps rows present in both relations.
func (r *Relation) Intersect(other *Relation) *Relation {
	return r.combine(other, "INTERSECT")
}

// Except keeps rows of this relation absent from the other.
func (r *Relation) Except(other *Relation) *Relation {
	return r.combine(other, "EXCEPT")
}

// JoinKind selects the join flavor.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT OUTER"
	JoinRight JoinKind = "RIGHT OUTER"
	JoinOuter JoinKind = "FULL OUTER"
)

var qualifiedColumnPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\.[A-Za-z_]`)

// joinAliases names the two sides of a join. Explicit aliases win; missing
// ones are inferred by scanning the condition text for table.column
// references, falling back to lhs/rhs. The inference cannot see through
// unqualified or computed conditions, hence the As escape hatch.
func joinAliases(a, b *Relation, condition string) (string, string) {
	left, right := a.alias, b.alias

	var inferred []string
	for _, m := range qualifiedColumnPattern.FindAllStringSubmatch(condition, -1) {
		name := m[1]
		if len(inferred) > 0 && inferred[len(inferred)-1] == name {
			continue
		}
		inferred = append(inferred, name)
	}

	if left == "" && len(inferred) > 0 {
		left = inferred[0]
	}
	if right == "" && len(inferred) > 1 {
		right = inferred[1]
	}
	if left == "" {
		left = "lhs"
	}
	if right == "" {
		right = "rhs"
	}
	return left, right
}

// Join joins two relations of the same session on an explicit condition.
func (r *Relation) Join(other *Relation, condition string, kind JoinKind) *Relation {
	if kind == "" {
		kind = JoinInner
	}
	left, right := joinAliases(r, other, condition)
	return r.derive(fmt.Sprintf(
		"SELECT * FROM (%s) AS %s %s JOIN (%s) AS %s ON (%s)",
		r.sql, left, kind, other.sql, right, condition))
}

// Cross produces the cartesian product of two relations.
func (r *Relation) Cross(other *Relation) *Relation {
	left, right := joinAliases(r, other, "")
	if left == right {
		right = right + "_2"
	}
	return r.derive(fmt.Sprintf(
		"SELECT * FROM (%s) AS %s CROSS JOIN (%s) AS %s", r.sql, left, other.sql, right))
}

// Execute materializes the relation. The relation never caches the result;
// every call round-trips to the engine.
func (r *Relation) Execute(ctx context.Context) (*QueryResult, error) {
	return r.conn.Execute(ctx, r.sql)
}

// FetchAll materializes the relation and returns all rows.
func (r *Relation) FetchAll(ctx context.Context) ([]Row, error) {
	return r.conn.FetchAll(ctx, r.sql)
}

// FetchOne materializes the relation and returns its first row.
func (r *Relation) FetchOne(ctx context.Context) (Row, bool, error) {
	return r.conn.FetchOne(ctx, r.sql)
}

// FetchMany materializes the relation and returns up to n rows.
func (r *Relation) FetchMany(ctx context.Context, n int) ([]Row, error) {
	result, err := r.conn.Execute(ctx, r.sql)
	if err != nil {
		return nil, err
	}
	return result.FetchMany(n), nil
}
