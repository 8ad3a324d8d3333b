// Package storagetest holds the behaviour every storage.Adapter must share.
package storagetest

import (
	"context"
	"errors"

	"github.com/stretchr/testify/suite"

	authmodels "mss/internal/authorization/models"
	"mss/internal/homologation/models"
	"mss/internal/storage"
	"mss/pkg/platform/sentinel"
)

// AdapterSuite runs against a fresh adapter for every test. Embed it and set
// Adapter and Ctx from SetupTest.
type AdapterSuite struct {
	suite.Suite
	Adapter storage.Adapter
	Ctx     context.Context
}

var errBoom = errors.New("boom")

func homologation(id, name string) *models.HomologationData {
	return &models.HomologationData{
		ID: id,
		DescriptionService: models.ServiceDescriptionData{
			NomService:    name,
			NatureService: []string{"siteInternet"},
		},
		Dossiers: []models.DossierData{{ID: "d-" + id, DateHomologation: "2023-01-01"}},
	}
}

func authorization(id, userID, homologationID string, t authmodels.Type) *authmodels.Authorization {
	return &authmodels.Authorization{ID: id, UserID: userID, HomologationID: homologationID, ServiceID: homologationID, Type: t}
}

func (s *AdapterSuite) TestHomologations() {
	s.Run("saves and reads back", func() {
		h := homologation("h1", "Service A")
		s.Require().NoError(s.Adapter.SaveHomologation(s.Ctx, h))

		got, err := s.Adapter.Homologation(s.Ctx, "h1")
		s.Require().NoError(err)
		s.Equal(h, got)
	})

	s.Run("returns copies", func() {
		got, err := s.Adapter.Homologation(s.Ctx, "h1")
		s.Require().NoError(err)
		got.DescriptionService.NatureService[0] = "api"

		again, err := s.Adapter.Homologation(s.Ctx, "h1")
		s.Require().NoError(err)
		s.Equal("siteInternet", again.DescriptionService.NatureService[0])
	})

	s.Run("updates in place", func() {
		s.Require().NoError(s.Adapter.SaveHomologation(s.Ctx, homologation("h1", "Service B")))
		got, err := s.Adapter.Homologation(s.Ctx, "h1")
		s.Require().NoError(err)
		s.Equal("Service B", got.DescriptionService.NomService)

		all, err := s.Adapter.Homologations(s.Ctx)
		s.Require().NoError(err)
		s.Len(all, 1)
	})

	s.Run("reports unknown ids", func() {
		_, err := s.Adapter.Homologation(s.Ctx, "inconnu")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("deletes idempotently", func() {
		s.Require().NoError(s.Adapter.DeleteHomologation(s.Ctx, "h1"))
		s.Require().NoError(s.Adapter.DeleteHomologation(s.Ctx, "h1"))
		_, err := s.Adapter.Homologation(s.Ctx, "h1")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *AdapterSuite) TestServices() {
	svc := &models.ServiceData{
		ID:                 "h1",
		DescriptionService: models.ServiceDescriptionData{NomService: "Service"},
		MesuresGenerales:   []models.GeneralMeasureData{{ID: "m1", Statut: "fait"}},
	}
	s.Require().NoError(s.Adapter.SaveService(s.Ctx, svc))

	got, err := s.Adapter.Service(s.Ctx, "h1")
	s.Require().NoError(err)
	s.Equal(svc, got)

	all, err := s.Adapter.Services(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 1)

	s.Require().NoError(s.Adapter.DeleteService(s.Ctx, "h1"))
	_, err = s.Adapter.Service(s.Ctx, "h1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *AdapterSuite) TestUsers() {
	u := &models.User{ID: "u1", Prenom: "Jean", Nom: "Dupont", Email: "jean@example.com"}
	s.Require().NoError(s.Adapter.SaveUser(s.Ctx, u))

	got, err := s.Adapter.User(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(u, got)

	users, err := s.Adapter.Users(s.Ctx)
	s.Require().NoError(err)
	s.Len(users, 1)

	s.Require().NoError(s.Adapter.DeleteUser(s.Ctx, "u1"))
	_, err = s.Adapter.User(s.Ctx, "u1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *AdapterSuite) TestAuthorizations() {
	s.Require().NoError(s.Adapter.SaveAuthorization(s.Ctx, authorization("a1", "u1", "h1", authmodels.TypeCreator)))
	s.Require().NoError(s.Adapter.SaveAuthorization(s.Ctx, authorization("a2", "u2", "h1", authmodels.TypeContributor)))
	s.Require().NoError(s.Adapter.SaveAuthorization(s.Ctx, authorization("a3", "u1", "h2", authmodels.TypeCreator)))

	s.Run("finds by id", func() {
		got, err := s.Adapter.Authorization(s.Ctx, "a2")
		s.Require().NoError(err)
		s.Equal(authmodels.TypeContributor, got.Type)
		s.Equal("h1", got.ServiceID)
	})

	s.Run("filters by user", func() {
		got, err := s.Adapter.AuthorizationsByUser(s.Ctx, "u1")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal("a1", got[0].ID)
		s.Equal("a3", got[1].ID)
	})

	s.Run("filters by homologation", func() {
		got, err := s.Adapter.AuthorizationsByHomologation(s.Ctx, "h1")
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("deletes a batch", func() {
		s.Require().NoError(s.Adapter.DeleteAuthorizations(s.Ctx, []string{"a1", "a2", "absent"}))
		all, err := s.Adapter.Authorizations(s.Ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 1)
		s.Equal("a3", all[0].ID)
		s.Require().NoError(s.Adapter.DeleteAuthorizations(s.Ctx, nil))
	})

	s.Run("deletes one", func() {
		s.Require().NoError(s.Adapter.DeleteAuthorization(s.Ctx, "a3"))
		_, err := s.Adapter.Authorization(s.Ctx, "a3")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *AdapterSuite) TestRunInTx() {
	s.Run("commits every write", func() {
		err := s.Adapter.RunInTx(s.Ctx, func(ctx context.Context) error {
			if err := s.Adapter.SaveHomologation(ctx, homologation("tx1", "Tx")); err != nil {
				return err
			}
			return s.Adapter.SaveService(ctx, &models.ServiceData{ID: "tx1"})
		})
		s.Require().NoError(err)

		_, err = s.Adapter.Homologation(s.Ctx, "tx1")
		s.NoError(err)
		_, err = s.Adapter.Service(s.Ctx, "tx1")
		s.NoError(err)
	})

	s.Run("rolls back every write when fn fails", func() {
		err := s.Adapter.RunInTx(s.Ctx, func(ctx context.Context) error {
			if err := s.Adapter.SaveHomologation(ctx, homologation("tx2", "Tx")); err != nil {
				return err
			}
			if err := s.Adapter.DeleteService(ctx, "tx1"); err != nil {
				return err
			}
			return errBoom
		})
		s.Require().ErrorIs(err, errBoom)

		_, err = s.Adapter.Homologation(s.Ctx, "tx2")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.Adapter.Service(s.Ctx, "tx1")
		s.NoError(err)
	})

	s.Run("joins an enclosing transaction", func() {
		err := s.Adapter.RunInTx(s.Ctx, func(ctx context.Context) error {
			inner := s.Adapter.RunInTx(ctx, func(ctx context.Context) error {
				return s.Adapter.SaveHomologation(ctx, homologation("tx3", "Inner"))
			})
			s.Require().NoError(inner)
			return errBoom
		})
		s.Require().ErrorIs(err, errBoom)
		_, err = s.Adapter.Homologation(s.Ctx, "tx3")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("reads its own writes", func() {
		err := s.Adapter.RunInTx(s.Ctx, func(ctx context.Context) error {
			if err := s.Adapter.SaveAuthorization(ctx, authorization("txa", "u9", "tx1", authmodels.TypeCreator)); err != nil {
				return err
			}
			list, err := s.Adapter.AuthorizationsByUser(ctx, "u9")
			if err != nil {
				return err
			}
			s.Len(list, 1)
			return nil
		})
		s.Require().NoError(err)
	})

	s.Run("refuses a cancelled context", func() {
		ctx, cancel := context.WithCancel(s.Ctx)
		cancel()
		called := false
		err := s.Adapter.RunInTx(ctx, func(context.Context) error {
			called = true
			return nil
		})
		s.Require().Error(err)
		s.False(called)
	})
}
