package e2etests

import "github.com/duckpond/duckpond"

func (s *TestSuite) seedUsersAndOrders() {
	_, err := s.conn.Execute(s.ctx, createUsersTableSQL)
	s.Require().NoError(err)
	_, err = s.conn.Execute(s.ctx, createOrdersTableSQL)
	s.Require().NoError(err)

	_, err = s.conn.Execute(s.ctx,
		`insert into users values (1, 'ada@example.com', 'Ada'), (2, 'bob@example.com', 'Bob'), (3, 'cyd@example.com', 'Cyd');`)
	s.Require().NoError(err)
	// Cyd has no orders.
	_, err = s.conn.Execute(s.ctx,
		`insert into orders values (1, 1, 100), (2, 1, 250), (3, 2, 40);`)
	s.Require().NoError(err)
}

func (s *TestSuite) TestJoins() {
	s.seedUsersAndOrders()

	users := s.conn.Table("users")
	orders := s.conn.Table("orders")

	s.Run("Inner join drops unmatched rows", func() {
		rows, err := users.
			Join(orders, "users.id = orders.user_id", duckpond.JoinInner).
			Order("order_id").
			FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rows, 3)
		s.Equal("Ada", rows[0]["name"].Value)
		s.Equal("Bob", rows[2]["name"].Value)
	})

	s.Run("Left join keeps unmatched rows with nulls", func() {
		rows, err := users.
			Join(orders, "users.id = orders.user_id", duckpond.JoinLeft).
			Order("id, order_id").
			FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rows, 4)

		last := rows[3]
		s.Equal("Cyd", last["name"].Value)
		s.False(last["order_id"].Valid)
		s.False(last["total"].Valid)
	})

	s.Run("Explicit aliases override inference", func() {
		rows, err := users.As("u").
			Join(orders.As("o"), "u.id = o.user_id", duckpond.JoinInner).
			FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(rows, 3)
	})

	s.Run("Cross join is the full product", func() {
		rows, err := users.Cross(orders).FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(rows, 9)
	})

	s.Run("Self product aliases both sides", func() {
		rows, err := users.Cross(users).FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(rows, 9)
	})
}

func (s *TestSuite) TestSetOperations() {
	_, err := s.conn.Execute(s.ctx, createUsersTableSQL)
	s.Require().NoError(err)
	_, err = s.conn.Execute(s.ctx,
		`insert into users values (1, 'ada@example.com', 'Ada'), (2, 'bob@example.com', 'Bob'), (3, 'cyd@example.com', 'Cyd');`)
	s.Require().NoError(err)

	low := s.conn.Table("users").Filter("id <= 2")
	high := s.conn.Table("users").Filter("id >= 2")

	s.Run("Union eliminates duplicates", func() {
		rows, err := low.Union(high).FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(rows, 3)
	})

	s.Run("Intersect keeps the overlap", func() {
		rows, err := low.Intersect(high).FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		id, _ := rows[0]["id"].Int64()
		s.Equal(int64(2), id)
	})

	s.Run("Except removes the overlap", func() {
		rows, err := low.Except(high).FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		id, _ := rows[0]["id"].Int64()
		s.Equal(int64(1), id)
	})
}
