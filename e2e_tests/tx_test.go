package e2etests

import (
	"context"
	"errors"
)

func (s *TestSuite) userCount() int64 {
	aRow, ok, err := s.conn.FetchOne(s.ctx, "SELECT count(*) AS n FROM users")
	s.Require().NoError(err)
	s.Require().True(ok)

	n, ok := aRow["n"].Int64()
	s.Require().True(ok)
	return n
}

func (s *TestSuite) TestExplicitTransactions() {
	_, err := s.conn.Execute(s.ctx, createUsersTableSQL)
	s.Require().NoError(err)

	s.Run("Insert in a transaction but rollback before commit", func() {
		s.Require().NoError(s.conn.Begin(s.ctx))

		_, err := s.conn.Execute(s.ctx, `insert into users values (1, 'ada@example.com', 'Ada');`)
		s.Require().NoError(err)

		// The row is visible inside the transaction
		s.Equal(int64(1), s.userCount())

		s.Require().NoError(s.conn.Rollback(s.ctx))

		// After rollback, the row is gone
		s.Equal(int64(0), s.userCount())
	})

	s.Run("Now insert in a transaction and commit", func() {
		s.Require().NoError(s.conn.Begin(s.ctx))

		_, err := s.conn.Execute(s.ctx, `insert into users values (1, 'ada@example.com', 'Ada');`)
		s.Require().NoError(err)

		s.Require().NoError(s.conn.Commit(s.ctx))

		s.Equal(int64(1), s.userCount())
	})
}

func (s *TestSuite) TestManagedTransactions() {
	_, err := s.conn.Execute(s.ctx, createUsersTableSQL)
	s.Require().NoError(err)

	s.Run("Body error rolls back", func() {
		bodyErr := errors.New("nope")
		err := s.conn.Transaction(s.ctx, func(ctx context.Context) error {
			_, err := s.conn.Execute(ctx, `insert into users values (1, 'ada@example.com', 'Ada');`)
			s.Require().NoError(err)
			return bodyErr
		})
		s.Require().ErrorIs(err, bodyErr)
		s.Equal(int64(0), s.userCount())
	})

	s.Run("Body panic rolls back and is reported as an error", func() {
		err := s.conn.Transaction(s.ctx, func(ctx context.Context) error {
			_, err := s.conn.Execute(ctx, `insert into users values (1, 'ada@example.com', 'Ada');`)
			s.Require().NoError(err)
			panic("boom")
		})
		s.Require().Error(err)
		s.Contains(err.Error(), "boom")
		s.Equal(int64(0), s.userCount())
	})

	s.Run("Successful body commits", func() {
		err := s.conn.Transaction(s.ctx, func(ctx context.Context) error {
			_, err := s.conn.Execute(ctx, `insert into users values (1, 'ada@example.com', 'Ada');`)
			return err
		})
		s.Require().NoError(err)
		s.Equal(int64(1), s.userCount())
	})
}
