package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mss/internal/storage/sqlstore"
	"mss/internal/storage/storagetest"
)

type SQLiteSuite struct {
	storagetest.AdapterSuite
	store *sqlstore.Store
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}

func (s *SQLiteSuite) SetupTest() {
	s.Ctx = context.Background()
	store, err := sqlstore.Open(s.Ctx, sqlstore.SQLite, ":memory:")
	s.Require().NoError(err)
	s.store = store
	s.Adapter = store
}

func (s *SQLiteSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SQLiteSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.store.Migrate(s.Ctx))
}

func (s *SQLiteSuite) TestDialectByName() {
	d, err := sqlstore.DialectByName("sqlite")
	s.Require().NoError(err)
	s.Equal("sqlite", d.DriverName)

	_, err = sqlstore.DialectByName("oracle")
	s.Error(err)
}
