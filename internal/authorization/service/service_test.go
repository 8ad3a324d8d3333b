package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mss/internal/authorization/models"
	"mss/internal/storage"
	dErrors "mss/pkg/domain-errors"
	"mss/pkg/platform/ids"
)

type RepositorySuite struct {
	suite.Suite
	ctx   context.Context
	store *storage.InMemory
	repo  *Repository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = storage.NewInMemory()
	s.repo = New(s.store, WithIDGenerator(ids.Sequence("a1", "a2", "a3", "a4")))
}

func (s *RepositorySuite) TestGrants() {
	s.Run("grants the creator role", func() {
		a, err := s.repo.GrantCreator(s.ctx, "u1", "h1")
		s.Require().NoError(err)
		s.Equal(&models.Authorization{ID: "a1", UserID: "u1", HomologationID: "h1", ServiceID: "h1", Type: models.TypeCreator}, a)

		found, err := s.repo.Find(s.ctx, "a1")
		s.Require().NoError(err)
		s.Equal(a, found)
	})

	s.Run("grants a contributor once", func() {
		_, err := s.repo.GrantContributor(s.ctx, "u2", "h1")
		s.Require().NoError(err)

		_, err = s.repo.GrantContributor(s.ctx, "u2", "h1")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = s.repo.GrantContributor(s.ctx, "u1", "h1")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("finds the creator", func() {
		creator, err := s.repo.CreatorOf(s.ctx, "h1")
		s.Require().NoError(err)
		s.Equal("u1", creator.UserID)

		none, err := s.repo.CreatorOf(s.ctx, "h9")
		s.Require().NoError(err)
		s.Nil(none)
	})
}

func (s *RepositorySuite) TestQueries() {
	_, err := s.repo.GrantCreator(s.ctx, "u1", "h1")
	s.Require().NoError(err)
	_, err = s.repo.GrantCreator(s.ctx, "u1", "h2")
	s.Require().NoError(err)
	_, err = s.repo.GrantContributor(s.ctx, "u2", "h1")
	s.Require().NoError(err)

	byUser, err := s.repo.ForUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(byUser, 2)

	byHomologation, err := s.repo.ForHomologation(s.ctx, "h1")
	s.Require().NoError(err)
	s.Len(byHomologation, 2)

	_, err = s.repo.Find(s.ctx, "inconnue")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RepositorySuite) TestDeleteForHomologation() {
	_, err := s.repo.GrantCreator(s.ctx, "u1", "h1")
	s.Require().NoError(err)
	_, err = s.repo.GrantContributor(s.ctx, "u2", "h1")
	s.Require().NoError(err)
	_, err = s.repo.GrantCreator(s.ctx, "u1", "h2")
	s.Require().NoError(err)

	n, err := s.repo.DeleteForHomologation(s.ctx, "h1")
	s.Require().NoError(err)
	s.Equal(2, n)

	remaining, err := s.store.Authorizations(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal("h2", remaining[0].HomologationID)

	n, err = s.repo.DeleteForHomologation(s.ctx, "h1")
	s.Require().NoError(err)
	s.Zero(n)
}
