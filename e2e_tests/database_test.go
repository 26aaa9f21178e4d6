package e2etests

import (
	"errors"

	"github.com/duckpond/duckpond/pkg/duckerr"
)

func (s *TestSuite) TestBasicStatements() {
	s.Run("Select a constant", func() {
		aRow, ok, err := s.conn.FetchOne(s.ctx, "SELECT 1 AS x")
		s.Require().NoError(err)
		s.Require().True(ok)

		x, ok := aRow["x"].Int64()
		s.Require().True(ok)
		s.Equal(int64(1), x)
	})

	s.Run("Create table produces an empty result", func() {
		result, err := s.conn.Execute(s.ctx, createUsersTableSQL)
		s.Require().NoError(err)
		s.Equal(0, result.RowCount())
	})

	s.Run("Insert reports the affected row count", func() {
		result, err := s.conn.Execute(s.ctx,
			`insert into users values (1, 'ada@example.com', 'Ada'), (2, 'bob@example.com', 'Bob');`)
		s.Require().NoError(err)

		aRow, ok := result.FetchOne()
		s.Require().True(ok)
		count, ok := aRow["Count"].Int64()
		s.Require().True(ok)
		s.Equal(int64(2), count)
	})

	s.Run("Select rows back", func() {
		rows, err := s.conn.FetchAll(s.ctx, "SELECT * FROM users ORDER BY id")
		s.Require().NoError(err)
		s.Require().Len(rows, 2)
		s.Equal("Ada", rows[0]["name"].Value)
		s.Equal("Bob", rows[1]["name"].Value)
	})

	s.Run("Null values are marked invalid", func() {
		aRow, ok, err := s.conn.FetchOne(s.ctx, "SELECT NULL AS v, 42 AS w")
		s.Require().NoError(err)
		s.Require().True(ok)
		s.False(aRow["v"].Valid)
		s.True(aRow["w"].Valid)
	})

	s.Run("Fetching from an empty result", func() {
		_, ok, err := s.conn.FetchOne(s.ctx, "SELECT * FROM users WHERE id = 999")
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *TestSuite) TestErrorsAreTypedAndRecoverable() {
	s.Run("Syntax error surfaces as a parser error", func() {
		_, err := s.conn.Execute(s.ctx, "SELEKT 1")
		s.Require().Error(err)

		var typed *duckerr.Error
		s.Require().True(errors.As(err, &typed))
		s.Equal(duckerr.KindParser, typed.Kind)
	})

	s.Run("Session stays usable after an engine error", func() {
		aRow, ok, err := s.conn.FetchOne(s.ctx, "SELECT 2 AS x")
		s.Require().NoError(err)
		s.Require().True(ok)

		x, _ := aRow["x"].Int64()
		s.Equal(int64(2), x)
	})

	s.Run("Missing table surfaces as a catalog error", func() {
		_, err := s.conn.Execute(s.ctx, "SELECT * FROM no_such_table")
		s.Require().Error(err)

		var typed *duckerr.Error
		s.Require().True(errors.As(err, &typed))
		s.Equal(duckerr.KindCatalog, typed.Kind)
	})

	s.Run("Duplicate primary key surfaces as a constraint error", func() {
		_, err := s.conn.Execute(s.ctx, createUsersTableSQL)
		s.Require().NoError(err)
		_, err = s.conn.Execute(s.ctx, `insert into users values (1, 'ada@example.com', 'Ada');`)
		s.Require().NoError(err)

		_, err = s.conn.Execute(s.ctx, `insert into users values (1, 'dup@example.com', 'Dup');`)
		s.Require().Error(err)

		var typed *duckerr.Error
		s.Require().True(errors.As(err, &typed))
		s.Equal(duckerr.KindConstraint, typed.Kind)
	})
}

func (s *TestSuite) TestCloseIsIdempotent() {
	s.Require().NoError(s.conn.Close())
	s.Require().NoError(s.conn.Close())

	// Submitting on a closed connection fails fast with a connection error.
	_, err := s.conn.Execute(s.ctx, "SELECT 1")
	s.Require().Error(err)

	var typed *duckerr.Error
	s.Require().True(errors.As(err, &typed))
	s.Equal(duckerr.KindConnection, typed.Kind)
}
