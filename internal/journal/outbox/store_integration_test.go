//go:build integration

package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"mss/internal/journal"
	"mss/internal/journal/outbox"
	"mss/pkg/testutil/containers"
)

type OutboxStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	pool     *pgxpool.Pool
	store    *outbox.Store
}

func TestOutboxStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxStoreSuite))
}

func (s *OutboxStoreSuite) SetupSuite() {
	ctx := context.Background()
	s.postgres = containers.GetManager().GetPostgres(s.T())
	pool, err := outbox.OpenPool(ctx, s.postgres.DSN)
	s.Require().NoError(err)
	s.pool = pool
	s.store = outbox.NewStore(pool)
	s.Require().NoError(s.store.Migrate(ctx))
}

func (s *OutboxStoreSuite) TearDownSuite() {
	s.pool.Close()
}

func (s *OutboxStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "journal_evenements"))
}

func (s *OutboxStoreSuite) TestRecordAndPublish() {
	ctx := context.Background()
	first := journal.NewServiceCreated("s1", "u1", time.Now().Add(-time.Minute))
	second := journal.NewServiceDeleted("s1", time.Now())

	s.Require().NoError(s.store.Record(ctx, first))
	s.Require().NoError(s.store.Record(ctx, second))
	s.Require().NoError(s.store.Record(ctx, second))

	pending, err := s.store.Pending(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal("u1", pending[0].Payload["idUtilisateur"])

	target := journal.NewInMemory()
	n, err := outbox.NewRelay(s.store, target).RunOnce(ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	pending, err = s.store.Pending(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}
