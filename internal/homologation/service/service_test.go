package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Authorizations,Journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authmodels "mss/internal/authorization/models"
	authservice "mss/internal/authorization/service"
	"mss/internal/homologation/metrics"
	"mss/internal/homologation/models"
	"mss/internal/homologation/service/mocks"
	"mss/internal/journal"
	"mss/internal/referentiel"
	"mss/internal/storage"
	dErrors "mss/pkg/domain-errors"
	"mss/pkg/platform/ids"
	"mss/pkg/platform/sentinel"
)

// failingStore fails the selected writes so that rollback can be observed.
type failingStore struct {
	*storage.InMemory
	failSaveService bool
}

var errStoreDown = errors.New("store down")

func (f *failingStore) SaveService(ctx context.Context, s *models.ServiceData) error {
	if f.failSaveService {
		return errStoreDown
	}
	return f.InMemory.SaveService(ctx, s)
}

func counter(prefix string) ids.Func {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type RepositorySuite struct {
	suite.Suite
	ctx     context.Context
	store   *failingStore
	ref     *referentiel.Referentiel
	journal *journal.InMemory
	metrics *metrics.Metrics
	auths   *authservice.Repository
	repo    *Repository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	ref, err := referentiel.Default()
	s.Require().NoError(err)
	s.ref = ref
	s.ctx = context.Background()
	s.store = &failingStore{InMemory: storage.NewInMemory()}
	s.journal = journal.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.auths = authservice.New(s.store, authservice.WithIDGenerator(counter("auth")), authservice.WithLogger(logger))
	s.repo = s.newRepository(WithJournal(s.journal))
}

func (s *RepositorySuite) newRepository(opts ...Option) *Repository {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []Option{
		WithLogger(logger),
		WithMetrics(s.metrics),
		WithIDGenerator(counter("h")),
	}
	repo, err := New(s.store, s.auths, s.ref, append(base, opts...)...)
	s.Require().NoError(err)
	return repo
}

func description(name string) models.ServiceDescriptionData {
	return models.ServiceDescriptionData{
		NomService:               name,
		NatureService:            []string{"siteInternet"},
		ProvenanceService:        "developpement",
		LocalisationDonnees:      "france",
		DelaiAvantImpactCritique: "uneJournee",
	}
}

func (s *RepositorySuite) create(userID, name string) string {
	id, err := s.repo.Create(s.ctx, userID, description(name))
	s.Require().NoError(err)
	return id
}

func (s *RepositorySuite) saveUser(id, prenom, nom string) {
	s.Require().NoError(s.store.SaveUser(s.ctx, &models.User{ID: id, Prenom: prenom, Nom: nom, Email: id + "@example.com"}))
}

func (s *RepositorySuite) TestNew() {
	s.Run("requires its collaborators", func() {
		_, err := New(nil, s.auths, s.ref)
		s.ErrorContains(err, "store is required")
		_, err = New(s.store, nil, s.ref)
		s.ErrorContains(err, "authorizations are required")
		_, err = New(s.store, s.auths, nil)
		s.ErrorContains(err, "referentiel is required")
	})
}

func (s *RepositorySuite) TestCreate() {
	s.Run("writes both projections and the creator grant", func() {
		id := s.create("u1", "Service A")
		s.Equal("h-1", id)

		h, err := s.store.Homologation(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Service A", h.DescriptionService.NomService)

		svc, err := s.store.Service(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(id, svc.ID)
		s.Equal(h.DescriptionService, svc.DescriptionService)

		grants, err := s.store.AuthorizationsByHomologation(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Len(grants, 1)
		s.Equal(&authmodels.Authorization{
			ID: "auth-1", UserID: "u1", HomologationID: id, ServiceID: id, Type: authmodels.TypeCreator,
		}, grants[0])
	})

	s.Run("journals creation then completeness", func() {
		events := s.journal.Events()
		s.Require().Len(events, 2)
		s.Equal(journal.TypeServiceCreated, events[0].Type)
		s.Equal("u1", events[0].Payload["idUtilisateur"])
		s.Equal(journal.TypeCompletenessChanged, events[1].Type)
		s.Equal(len(s.ref.MeasureIDs()), events[1].Payload["nombreTotalMesures"])
		s.Equal(0, events[1].Payload["nombreMesuresCompletes"])
		s.Equal(1.0, testutil.ToFloat64(s.metrics.HomologationsCreated))
	})

	s.Run("rejects a description missing required data", func() {
		desc := description("Incomplet")
		desc.LocalisationDonnees = ""
		_, err := s.repo.Create(s.ctx, "u1", desc)
		s.Require().ErrorIs(err, models.ErrMissingRequiredData)

		all, err := s.store.Homologations(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 1)
	})

	s.Run("rejects a name the user already created", func() {
		_, err := s.repo.Create(s.ctx, "u1", description("Service A"))
		s.Require().ErrorIs(err, models.ErrServiceNameTaken)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(`Le nom du service "Service A" existe déjà pour une autre homologation`, err.Error())
	})

	s.Run("accepts the same name for another user", func() {
		_, err := s.repo.Create(s.ctx, "u2", description("Service A"))
		s.Require().NoError(err)
	})

	s.Run("rejects enumerated values unknown to the catalog", func() {
		desc := description("Lunaire")
		desc.LocalisationDonnees = "lune"
		_, err := s.repo.Create(s.ctx, "u1", desc)
		s.Require().ErrorIs(err, models.ErrInvalidServiceDescription)
	})
}

func (s *RepositorySuite) TestCreateRollsBackOnFailure() {
	s.store.failSaveService = true
	_, err := s.repo.Create(s.ctx, "u1", description("Service A"))
	s.Require().ErrorIs(err, errStoreDown)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = s.store.Homologation(s.ctx, "h-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	grants, err := s.store.Authorizations(s.ctx)
	s.Require().NoError(err)
	s.Empty(grants)
	s.Empty(s.journal.Events())
}

func (s *RepositorySuite) TestJournalFailuresAreNotReturned() {
	ctrl := gomock.NewController(s.T())
	mockJournal := mocks.NewMockJournal(ctrl)
	repo := s.newRepository(WithJournal(mockJournal))

	mockJournal.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("journal down")).Times(2)

	id, err := repo.Create(s.ctx, "u1", description("Service A"))
	s.Require().NoError(err)
	s.NotEmpty(id)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.JournalFailures.WithLabelValues(string(journal.TypeServiceCreated))))
}

func (s *RepositorySuite) TestGrantFailureAbortsCreation() {
	ctrl := gomock.NewController(s.T())
	mockAuths := mocks.NewMockAuthorizations(ctrl)
	repo, err := New(s.store, mockAuths, s.ref, WithIDGenerator(counter("h")))
	s.Require().NoError(err)

	mockAuths.EXPECT().ForUser(gomock.Any(), "u1").Return(nil, nil)
	mockAuths.EXPECT().GrantCreator(gomock.Any(), "u1", "h-1").Return(nil, errStoreDown)

	_, err = repo.Create(s.ctx, "u1", description("Service A"))
	s.Require().ErrorIs(err, errStoreDown)

	_, err = s.store.Service(s.ctx, "h-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RepositorySuite) TestGet() {
	s.Run("reports unknown ids", func() {
		_, err := s.repo.Get(s.ctx, "inconnu")
		s.Require().ErrorIs(err, models.ErrHomologationNotFound)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(`Homologation "inconnu" non trouvée`, err.Error())
	})

	s.Run("hydrates creator and contributors", func() {
		s.saveUser("u1", "Jean", "Dupont")
		s.saveUser("u2", "Anna", "Dubreuil")
		id := s.create("u1", "Service A")
		_, err := s.auths.GrantContributor(s.ctx, "u2", id)
		s.Require().NoError(err)
		_, err = s.auths.GrantContributor(s.ctx, "fantome", id)
		s.Require().NoError(err)

		h, err := s.repo.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotNil(h.Creator)
		s.Equal("u1", h.Creator.ID)
		s.Require().Len(h.Contributors, 1)
		s.Equal("u2", h.Contributors[0].ID)
		s.Equal("Service A", h.ServiceName())
	})
}

func (s *RepositorySuite) TestListForUser() {
	b := s.create("u1", "b")
	a := s.create("u1", "B")
	c := s.create("u2", "a")
	_, err := s.auths.GrantContributor(s.ctx, "u1", c)
	s.Require().NoError(err)
	s.create("u3", "hors champ")

	list, err := s.repo.ListForUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]string{a, c, b}, []string{list[0].ID, list[1].ID, list[2].ID})

	empty, err := s.repo.ListForUser(s.ctx, "personne")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *RepositorySuite) TestExists() {
	id := s.create("u1", "Service A")
	other := s.create("u2", "Service B")
	_, err := s.auths.GrantContributor(s.ctx, "u1", other)
	s.Require().NoError(err)

	exists, err := s.repo.Exists(s.ctx, "u1", "Service A", "")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.repo.Exists(s.ctx, "u1", "Service A", id)
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.repo.Exists(s.ctx, "u1", "service a", "")
	s.Require().NoError(err)
	s.False(exists)

	exists, err = s.repo.Exists(s.ctx, "u1", "Service B", "")
	s.Require().NoError(err)
	s.False(exists, "contributor grants do not reserve names")
}

func (s *RepositorySuite) TestUpdateServiceDescription() {
	id := s.create("u1", "Service A")
	s.create("u1", "Service B")

	s.Run("updates both projections", func() {
		desc := description("Service A")
		desc.Presentation = "Nouvelle présentation"
		s.Require().NoError(s.repo.UpdateServiceDescription(s.ctx, "u1", id, desc))

		h, err := s.store.Homologation(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Nouvelle présentation", h.DescriptionService.Presentation)
		svc, err := s.store.Service(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Nouvelle présentation", svc.DescriptionService.Presentation)

		types := s.journal.Types()
		s.Equal(journal.TypeCompletenessChanged, types[len(types)-1])
	})

	s.Run("rejects a name used by another homologation of the user", func() {
		err := s.repo.UpdateServiceDescription(s.ctx, "u1", id, description("Service B"))
		s.Require().ErrorIs(err, models.ErrServiceNameTaken)

		h, err := s.store.Homologation(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("Service A", h.DescriptionService.NomService)
	})

	s.Run("reports unknown ids", func() {
		err := s.repo.UpdateServiceDescription(s.ctx, "u1", "inconnu", description("Service C"))
		s.ErrorIs(err, models.ErrHomologationNotFound)
	})
}

func (s *RepositorySuite) TestAddMeasures() {
	id := s.create("u1", "Service A")
	total := len(s.ref.MeasureIDs())

	s.Require().NoError(s.repo.AddMeasures(s.ctx, id,
		[]models.GeneralMeasureData{{ID: "authentificationForte", Statut: models.MeasureInProgress}},
		[]models.SpecificMeasureData{{Description: "Une mesure spécifique"}},
	))
	s.Require().NoError(s.repo.AddMeasures(s.ctx, id,
		[]models.GeneralMeasureData{
			{ID: "authentificationForte", Statut: models.MeasureDone},
			{ID: "journalisation", Statut: models.MeasureNotDone},
		},
		[]models.SpecificMeasureData{{Description: "Remplacée", Statut: models.MeasureDone}},
	))

	svc, err := s.store.Service(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]models.GeneralMeasureData{
		{ID: "authentificationForte", Statut: models.MeasureDone},
		{ID: "journalisation", Statut: models.MeasureNotDone},
	}, svc.MesuresGenerales)
	s.Equal([]models.SpecificMeasureData{{Description: "Remplacée", Statut: models.MeasureDone}}, svc.MesuresSpecifiques)

	h, err := s.store.Homologation(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(svc.MesuresGenerales, h.MesuresGenerales)

	events := s.journal.Events()
	last := events[len(events)-1]
	s.Equal(journal.TypeCompletenessChanged, last.Type)
	s.Equal(total+1, last.Payload["nombreTotalMesures"])
	s.Equal(3, last.Payload["nombreMesuresCompletes"])

	s.Run("rejects unknown measures without writing", func() {
		err := s.repo.AddMeasures(s.ctx, id, []models.GeneralMeasureData{{ID: "inconnue"}}, nil)
		s.Require().ErrorIs(err, models.ErrUnknownMeasure)
		h, err := s.store.Homologation(s.ctx, id)
		s.Require().NoError(err)
		s.Len(h.MesuresSpecifiques, 1)
	})
}

func (s *RepositorySuite) TestCanonicalOnlyMutations() {
	id := s.create("u1", "Service A")
	before, err := s.store.Service(s.ctx, id)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.SetStakeholders(s.ctx, id, models.StakeholdersData{AutoriteHomologation: "Jean Dupont"}))
	s.Require().NoError(s.repo.SetRoles(s.ctx, id, models.RolesData{PiloteProjet: "Sylvie Martin"}))
	s.Require().NoError(s.repo.AddGeneralRisk(s.ctx, id, models.GeneralRiskData{ID: "fuiteDonnees", NiveauGravite: "grave"}))
	s.Require().NoError(s.repo.AddGeneralRisk(s.ctx, id, models.GeneralRiskData{ID: "fuiteDonnees", NiveauGravite: "critique"}))
	s.Require().NoError(s.repo.ReplaceSpecificRisks(s.ctx, id, []models.SpecificRiskData{{Description: "Panne"}}))
	s.Require().NoError(s.repo.SetExpertOpinion(s.ctx, id, models.ExpertOpinionData{Avis: "favorable", DateExpiration: "unAn"}))

	h, err := s.repo.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Jean Dupont (fonction non renseignée)", h.AuthorityDescription())
	s.Equal("Sylvie Martin", h.Roles.Data().PiloteProjet)
	s.Equal([]models.GeneralRiskData{{ID: "fuiteDonnees", NiveauGravite: "critique"}}, h.Risks.General())
	s.Equal([]models.SpecificRiskData{{Description: "Panne"}}, h.SpecificRisks())
	s.True(h.ExpertOpinion.Favorable())

	after, err := s.store.Service(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(before, after)

	s.Run("rejects invalid values", func() {
		err := s.repo.AddGeneralRisk(s.ctx, id, models.GeneralRiskData{ID: "inconnu"})
		s.ErrorIs(err, models.ErrUnknownRisk)
		err = s.repo.SetExpertOpinion(s.ctx, id, models.ExpertOpinionData{Avis: "bof"})
		s.ErrorIs(err, models.ErrInvalidExpertOpinion)
	})

	s.Run("reports unknown ids", func() {
		s.ErrorIs(s.repo.SetRoles(s.ctx, "inconnu", models.RolesData{}), models.ErrHomologationNotFound)
		s.ErrorIs(s.repo.ReplaceSpecificRisks(s.ctx, "inconnu", nil), models.ErrHomologationNotFound)
	})
}

func (s *RepositorySuite) TestEnsureCurrentDossier() {
	id := s.create("u1", "Service A")

	s.Require().NoError(s.repo.EnsureCurrentDossier(s.ctx, id))
	h, err := s.store.Homologation(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(h.Dossiers, 1)
	s.Equal("h-2", h.Dossiers[0].ID)
	s.False(h.Dossiers[0].Finalise)

	s.Require().NoError(s.repo.EnsureCurrentDossier(s.ctx, id))
	h, err = s.store.Homologation(s.ctx, id)
	s.Require().NoError(err)
	s.Len(h.Dossiers, 1)

	s.ErrorIs(s.repo.EnsureCurrentDossier(s.ctx, "inconnu"), models.ErrHomologationNotFound)
}

func (s *RepositorySuite) TestUpdateCurrentDossier() {
	id := s.create("u1", "Service A")
	s.Require().NoError(s.repo.EnsureCurrentDossier(s.ctx, id))

	s.Run("keeps the id of the open dossier", func() {
		err := s.repo.UpdateCurrentDossier(s.ctx, id, models.DossierData{ID: "ignore", DateHomologation: "2023-01-01"})
		s.Require().NoError(err)

		h, err := s.repo.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Equal("h-2", h.CurrentDossier().ID)
		s.Equal("01/01/2023", h.CurrentDossier().DateDescription())
	})

	s.Run("refuses to finalise an incomplete dossier", func() {
		err := s.repo.UpdateCurrentDossier(s.ctx, id, models.DossierData{DateHomologation: "2023-01-01", Finalise: true})
		s.Require().ErrorIs(err, models.ErrDossierNotFinalisable)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("Le dossier n'est pas complet et ne peut pas être finalisé", err.Error())

		h, err := s.store.Homologation(s.ctx, id)
		s.Require().NoError(err)
		s.False(h.Dossiers[0].Finalise)
	})

	s.Run("rejects an invalid duration", func() {
		err := s.repo.UpdateCurrentDossier(s.ctx, id, models.DossierData{DureeValidite: "dixAns"})
		s.ErrorIs(err, models.ErrInvalidValidityDuration)
	})

	s.Run("finalises a complete dossier", func() {
		err := s.repo.UpdateCurrentDossier(s.ctx, id, models.DossierData{
			DateHomologation: "2023-01-01", DureeValidite: "unAn", Finalise: true,
		})
		s.Require().NoError(err)

		h, err := s.repo.Get(s.ctx, id)
		s.Require().NoError(err)
		s.Nil(h.CurrentDossier())
		s.Equal(1, h.DossierCount())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.DossiersFinalised))
	})

	s.Run("appends a dossier when none is open", func() {
		err := s.repo.UpdateCurrentDossier(s.ctx, id, models.DossierData{ID: "h-2", DureeValidite: "sixMois"})
		s.Require().NoError(err)

		h, err := s.store.Homologation(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Len(h.Dossiers, 2)
		s.Equal("h-2", h.Dossiers[0].ID)
		s.True(h.Dossiers[0].Finalise)
		s.Equal("h-3", h.Dossiers[1].ID, "appended dossier gets a generated id")
		s.False(h.Dossiers[1].Finalise)
	})
}

func (s *RepositorySuite) TestDelete() {
	s.Run("removes the three kinds of rows for the id only", func() {
		data := &models.HomologationData{ID: "123", DescriptionService: description("Service")}
		s.Require().NoError(s.store.SaveHomologation(s.ctx, data))
		svc := models.ServiceProjection(*data)
		s.Require().NoError(s.store.SaveService(s.ctx, &svc))
		for i, userID := range []string{"u1", "u2", "u3"} {
			s.Require().NoError(s.store.SaveAuthorization(s.ctx, &authmodels.Authorization{
				ID: fmt.Sprintf("a%d", i), UserID: userID, HomologationID: "123", ServiceID: "123", Type: authmodels.TypeContributor,
			}))
		}
		s.Require().NoError(s.store.SaveAuthorization(s.ctx, &authmodels.Authorization{
			ID: "autre", UserID: "u1", HomologationID: "456", ServiceID: "456", Type: authmodels.TypeCreator,
		}))

		s.Require().NoError(s.repo.Delete(s.ctx, "123"))

		_, err := s.store.Homologation(s.ctx, "123")
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.Service(s.ctx, "123")
		s.ErrorIs(err, sentinel.ErrNotFound)
		grants, err := s.store.Authorizations(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(grants, 1)
		s.Equal("autre", grants[0].ID)

		events := s.journal.Events()
		s.Require().NotEmpty(events)
		s.Equal(journal.TypeServiceDeleted, events[len(events)-1].Type)
		s.Equal("123", events[len(events)-1].ServiceID())
	})

	s.Run("succeeds without any grant", func() {
		s.Require().NoError(s.repo.Delete(s.ctx, "sans-autorisation"))
		s.Equal(2.0, testutil.ToFloat64(s.metrics.HomologationsDeleted))
	})
}

func (s *RepositorySuite) TestDeleteCreatedBy() {
	own1 := s.create("u1", "Service A")
	own2 := s.create("u1", "Service B")
	shared := s.create("u2", "Service C")
	_, err := s.auths.GrantContributor(s.ctx, "u1", shared)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.DeleteCreatedBy(s.ctx, "u1"))

	for _, id := range []string{own1, own2} {
		_, err := s.store.Homologation(s.ctx, id)
		s.ErrorIs(err, sentinel.ErrNotFound)
	}
	_, err = s.store.Homologation(s.ctx, shared)
	s.Require().NoError(err)

	remaining, err := s.store.AuthorizationsByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(shared, remaining[0].HomologationID)
}
