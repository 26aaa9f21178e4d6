package e2etests

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

func (s *TestSuite) seedUsers(n int) {
	_, err := s.conn.Execute(s.ctx, createUsersTableSQL)
	s.Require().NoError(err)

	faker := gofakeit.New(42)
	values := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		values = append(values, fmt.Sprintf("(%d, %s, %s)",
			i, quote(fmt.Sprintf("user%d@example.com", i)), quote(faker.Name())))
	}
	result, err := s.conn.Execute(s.ctx,
		fmt.Sprintf("insert into users values %s;", strings.Join(values, ", ")))
	s.Require().NoError(err)

	aRow, ok := result.FetchOne()
	s.Require().True(ok)
	count, _ := aRow["Count"].Int64()
	s.Require().Equal(int64(n), count)
}

func (s *TestSuite) TestRelationPipeline() {
	s.seedUsers(10)
	users := s.conn.Table("users")

	s.Run("Filter, order and limit", func() {
		rows, err := users.
			Filter("id > 5").
			Order("id DESC").
			Limit(3).
			FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rows, 3)

		id, _ := rows[0]["id"].Int64()
		s.Equal(int64(10), id)
		id, _ = rows[2]["id"].Int64()
		s.Equal(int64(8), id)
	})

	s.Run("Projection narrows columns", func() {
		aRow, ok, err := users.Project("id", "email").Filter("id = 1").FetchOne(s.ctx)
		s.Require().NoError(err)
		s.Require().True(ok)
		s.Equal("user1@example.com", aRow["email"].Value)
		_, present := aRow["name"]
		s.False(present)
	})

	s.Run("FetchMany caps the row count", func() {
		rows, err := users.Order("id").FetchMany(s.ctx, 4)
		s.Require().NoError(err)
		s.Len(rows, 4)
	})

	s.Run("Distinct collapses duplicates", func() {
		rows, err := users.Project("1 AS one").Distinct().FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(rows, 1)
	})

	s.Run("Base relation is untouched by the pipeline", func() {
		rows, err := users.FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Len(rows, 10)
	})
}

func (s *TestSuite) TestRelationAggregates() {
	_, err := s.conn.Execute(s.ctx, createOrdersTableSQL)
	s.Require().NoError(err)
	_, err = s.conn.Execute(s.ctx,
		`insert into orders values (1, 1, 100), (2, 1, 250), (3, 2, 40);`)
	s.Require().NoError(err)

	orders := s.conn.Table("orders")

	s.Run("Count", func() {
		result, err := orders.Count().Execute(s.ctx)
		s.Require().NoError(err)

		// Engine-chosen aggregate column names vary, so read by position.
		tuples := result.Tuples()
		s.Require().Len(tuples, 1)
		count, ok := tuples[0][0].Int64()
		s.Require().True(ok)
		s.Equal(int64(3), count)
	})

	s.Run("Sum", func() {
		result, err := orders.Sum("total").Execute(s.ctx)
		s.Require().NoError(err)

		total, ok := result.Tuples()[0][0].Int64()
		s.Require().True(ok)
		s.Equal(int64(390), total)
	})

	s.Run("Grouped aggregate", func() {
		rows, err := orders.
			Aggregate("sum(total) AS spent", "user_id").
			Order("user_id").
			FetchAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(rows, 2)

		spent, _ := rows[0]["spent"].Int64()
		s.Equal(int64(350), spent)
		spent, _ = rows[1]["spent"].Int64()
		s.Equal(int64(40), spent)
	})

	s.Run("Min and max", func() {
		result, err := orders.Min("total").Execute(s.ctx)
		s.Require().NoError(err)
		low, _ := result.Tuples()[0][0].Int64()
		s.Equal(int64(40), low)

		result, err = orders.Max("total").Execute(s.ctx)
		s.Require().NoError(err)
		high, _ := result.Tuples()[0][0].Int64()
		s.Equal(int64(250), high)
	})

	s.Run("Avg returns a float", func() {
		result, err := orders.Avg("total").Execute(s.ctx)
		s.Require().NoError(err)
		avg, ok := result.Tuples()[0][0].Float64()
		s.Require().True(ok)
		s.InDelta(130.0, avg, 0.001)
	})
}
