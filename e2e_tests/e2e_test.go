package e2etests

import "strings"

var createUsersTableSQL = `create table users (
	id integer primary key,
	email varchar,
	name varchar
);`

var createOrdersTableSQL = `create table orders (
	order_id integer primary key,
	user_id integer not null,
	total integer not null
);`

// quote embeds a string literal into SQL, doubling any single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
