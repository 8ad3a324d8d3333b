// Package service is the only writer of homologation state. It keeps the
// canonical record, the service projection and the creator grant consistent
// and reports structural changes to the journal.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mss/internal/homologation/metrics"
	"mss/internal/homologation/models"
	"mss/internal/journal"
	"mss/internal/referentiel"
	dErrors "mss/pkg/domain-errors"
	"mss/pkg/platform/ids"
	"mss/pkg/platform/sentinel"
)

const tracerName = "mss/internal/homologation/service"

type Repository struct {
	store          Store
	authorizations Authorizations
	ref            *referentiel.Referentiel
	journal        Journal
	ids            ids.Generator
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	now            func() time.Time
}

type Option func(*Repository)

func WithJournal(j Journal) Option {
	return func(r *Repository) {
		r.journal = j
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) {
		r.metrics = m
	}
}

func WithIDGenerator(gen ids.Generator) Option {
	return func(r *Repository) {
		r.ids = gen
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Repository) {
		r.tracer = t
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New constructs a Repository. The journal defaults to discarding events.
func New(store Store, authorizations Authorizations, ref *referentiel.Referentiel, opts ...Option) (*Repository, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if authorizations == nil {
		return nil, errors.New("authorizations are required")
	}
	if ref == nil {
		return nil, errors.New("referentiel is required")
	}
	r := &Repository{
		store:          store,
		authorizations: authorizations,
		ref:            ref,
		journal:        journal.Discard{},
		ids:            ids.UUID{},
		logger:         slog.Default(),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Repository) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	begin := time.Now()
	ctx, span := r.tracer.Start(ctx, "homologation."+operation, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
		if r.metrics != nil {
			r.metrics.ObserveOperation(operation, begin)
		}
	}
}

// Create registers a new homologation owned by userID and returns its id.
func (r *Repository) Create(ctx context.Context, userID string, description models.ServiceDescriptionData) (id string, err error) {
	ctx, end := r.start(ctx, "create", attribute.String("user_id", userID))
	defer end(&err)

	if err := models.ValidateServiceDescriptionForCreation(description); err != nil {
		return "", err
	}
	taken, err := r.Exists(ctx, userID, description.NomService, "")
	if err != nil {
		return "", err
	}
	if taken {
		return "", models.NewServiceNameTakenError(description.NomService)
	}

	data := models.HomologationData{ID: r.ids.NewID(), DescriptionService: description}
	h, err := models.NewHomologation(data, r.ref)
	if err != nil {
		return "", err
	}
	data = h.Data()

	err = r.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.saveProjections(ctx, &data, true); err != nil {
			return err
		}
		if _, err := r.authorizations.GrantCreator(ctx, userID, data.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	r.record(ctx, journal.NewServiceCreated(data.ID, userID, r.now()))
	r.recordCompleteness(ctx, h)
	if r.metrics != nil {
		r.metrics.IncrementCreated()
	}
	r.logger.InfoContext(ctx, "homologation created",
		"homologation_id", data.ID,
		"user_id", userID,
	)
	return data.ID, nil
}

// Get loads a homologation with its creator and contributors.
func (r *Repository) Get(ctx context.Context, id string) (h *models.Homologation, err error) {
	ctx, end := r.start(ctx, "get", attribute.String("homologation_id", id))
	defer end(&err)

	data, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	opts, err := r.members(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewHomologation(*data, r.ref, opts...)
}

// members resolves the users holding a grant on id. Grants whose user no
// longer exists are skipped.
func (r *Repository) members(ctx context.Context, id string) ([]models.Option, error) {
	grants, err := r.authorizations.ForHomologation(ctx, id)
	if err != nil {
		return nil, err
	}
	var (
		opts         []models.Option
		contributors = []models.User{}
	)
	for _, g := range grants {
		user, err := r.store.User(ctx, g.UserID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		if g.IsCreator() {
			opts = append(opts, models.WithCreator(*user))
			continue
		}
		contributors = append(contributors, *user)
	}
	return append(opts, models.WithContributors(contributors)), nil
}

// ListForUser returns every homologation userID holds a grant on, sorted by
// service name.
func (r *Repository) ListForUser(ctx context.Context, userID string) (list []*models.Homologation, err error) {
	ctx, end := r.start(ctx, "list_for_user", attribute.String("user_id", userID))
	defer end(&err)

	grants, err := r.authorizations.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(grants))
	list = make([]*models.Homologation, 0, len(grants))
	for _, g := range grants {
		if seen[g.HomologationID] {
			continue
		}
		seen[g.HomologationID] = true
		h, err := r.Get(ctx, g.HomologationID)
		if err != nil {
			if errors.Is(err, models.ErrHomologationNotFound) {
				continue
			}
			return nil, err
		}
		list = append(list, h)
	}
	slices.SortStableFunc(list, func(a, b *models.Homologation) int {
		return strings.Compare(a.ServiceName(), b.ServiceName())
	})
	return list, nil
}

// Exists reports whether a homologation created by userID, other than
// excludeID, already uses serviceName. Names are compared exactly.
//
// The check is not atomic with the write that follows it: two concurrent
// creations of the same name by the same user can both succeed.
func (r *Repository) Exists(ctx context.Context, userID, serviceName, excludeID string) (bool, error) {
	grants, err := r.authorizations.ForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, g := range grants {
		if !g.IsCreator() || g.HomologationID == excludeID {
			continue
		}
		data, err := r.store.Homologation(ctx, g.HomologationID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load homologation")
		}
		if data.DescriptionService.NomService == serviceName {
			return true, nil
		}
	}
	return false, nil
}

// UpdateServiceDescription replaces the description of id after checking that
// userID does not already use the new name elsewhere.
func (r *Repository) UpdateServiceDescription(ctx context.Context, userID, id string, description models.ServiceDescriptionData) (err error) {
	ctx, end := r.start(ctx, "update_service_description", attribute.String("homologation_id", id))
	defer end(&err)

	if err := models.ValidateServiceDescriptionForCreation(description); err != nil {
		return err
	}
	taken, err := r.Exists(ctx, userID, description.NomService, id)
	if err != nil {
		return err
	}
	if taken {
		return models.NewServiceNameTakenError(description.NomService)
	}
	h, err := r.update(ctx, id, true, func(data *models.HomologationData) (bool, error) {
		data.DescriptionService = description
		return true, nil
	})
	if err != nil {
		return err
	}
	r.recordCompleteness(ctx, h)
	return nil
}

// AddMeasures upserts general measures by id and replaces the specific ones.
func (r *Repository) AddMeasures(ctx context.Context, id string, general []models.GeneralMeasureData, specific []models.SpecificMeasureData) (err error) {
	ctx, end := r.start(ctx, "add_measures", attribute.String("homologation_id", id))
	defer end(&err)

	h, err := r.update(ctx, id, true, func(data *models.HomologationData) (bool, error) {
		data.MesuresGenerales = models.UpsertGeneralMeasures(data.MesuresGenerales, general)
		data.MesuresSpecifiques = slices.Clone(specific)
		return true, nil
	})
	if err != nil {
		return err
	}
	r.recordCompleteness(ctx, h)
	return nil
}

func (r *Repository) SetStakeholders(ctx context.Context, id string, stakeholders models.StakeholdersData) (err error) {
	ctx, end := r.start(ctx, "set_stakeholders", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		data.PartiesPrenantes = stakeholders
		return true, nil
	})
	return err
}

func (r *Repository) SetRoles(ctx context.Context, id string, roles models.RolesData) (err error) {
	ctx, end := r.start(ctx, "set_roles", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		data.RolesResponsabilites = roles
		return true, nil
	})
	return err
}

// AddGeneralRisk replaces the general risk sharing risk's id, or appends it.
func (r *Repository) AddGeneralRisk(ctx context.Context, id string, risk models.GeneralRiskData) (err error) {
	ctx, end := r.start(ctx, "add_general_risk", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		data.RisquesGeneraux = models.UpsertGeneralRisk(data.RisquesGeneraux, risk)
		return true, nil
	})
	return err
}

func (r *Repository) ReplaceSpecificRisks(ctx context.Context, id string, risks []models.SpecificRiskData) (err error) {
	ctx, end := r.start(ctx, "replace_specific_risks", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		data.RisquesSpecifiques = slices.Clone(risks)
		return true, nil
	})
	return err
}

func (r *Repository) SetExpertOpinion(ctx context.Context, id string, opinion models.ExpertOpinionData) (err error) {
	ctx, end := r.start(ctx, "set_expert_opinion", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		data.AvisExpertCyber = opinion
		return true, nil
	})
	return err
}

// EnsureCurrentDossier appends an empty open dossier when every dossier of id
// is finalised. Nothing is written when an open dossier already exists.
func (r *Repository) EnsureCurrentDossier(ctx context.Context, id string) (err error) {
	ctx, end := r.start(ctx, "ensure_current_dossier", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		if openDossier(data.Dossiers) >= 0 {
			return false, nil
		}
		data.Dossiers = append(data.Dossiers, models.DossierData{ID: r.ids.NewID()})
		return true, nil
	})
	return err
}

// UpdateCurrentDossier replaces the open dossier of id with dossier, keeping
// its id. Without an open dossier, dossier is appended under a generated id,
// whatever id the caller passed. A dossier can only be
// finalised once complete.
func (r *Repository) UpdateCurrentDossier(ctx context.Context, id string, dossier models.DossierData) (err error) {
	ctx, end := r.start(ctx, "update_current_dossier", attribute.String("homologation_id", id))
	defer end(&err)

	_, err = r.update(ctx, id, false, func(data *models.HomologationData) (bool, error) {
		i := openDossier(data.Dossiers)
		if i >= 0 {
			dossier.ID = data.Dossiers[i].ID
		} else {
			dossier.ID = r.ids.NewID()
		}

		d, err := models.NewDossier(dossier, r.ref)
		if err != nil {
			return false, err
		}
		if d.Finalised && !d.IsComplete() {
			return false, models.NewDossierNotFinalisableError()
		}

		data.Dossiers = slices.Clone(data.Dossiers)
		if i >= 0 {
			data.Dossiers[i] = dossier
		} else {
			data.Dossiers = append(data.Dossiers, dossier)
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	if dossier.Finalise && r.metrics != nil {
		r.metrics.IncrementDossierFinalised()
	}
	return nil
}

func openDossier(dossiers []models.DossierData) int {
	return slices.IndexFunc(dossiers, func(d models.DossierData) bool { return !d.Finalise })
}

// Delete removes the homologation, its service projection and every grant on
// it. Deleting an unknown id only records the journal event.
func (r *Repository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := r.start(ctx, "delete", attribute.String("homologation_id", id))
	defer end(&err)

	removed := 0
	err = r.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.store.DeleteHomologation(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete homologation")
		}
		if err := r.store.DeleteService(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete service")
		}
		n, err := r.authorizations.DeleteForHomologation(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return err
	}

	r.record(ctx, journal.NewServiceDeleted(id, r.now()))
	if r.metrics != nil {
		r.metrics.IncrementDeleted()
	}
	r.logger.InfoContext(ctx, "homologation deleted",
		"homologation_id", id,
		"authorizations_removed", removed,
	)
	return nil
}

// DeleteCreatedBy deletes every homologation userID created. Homologations
// userID only contributes to are left untouched.
func (r *Repository) DeleteCreatedBy(ctx context.Context, userID string) (err error) {
	ctx, end := r.start(ctx, "delete_created_by", attribute.String("user_id", userID))
	defer end(&err)

	grants, err := r.authorizations.ForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, g := range grants {
		if !g.IsCreator() {
			continue
		}
		if err := r.Delete(ctx, g.HomologationID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) load(ctx context.Context, id string) (*models.HomologationData, error) {
	data, err := r.store.Homologation(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.NewHomologationNotFoundError(id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load homologation")
	}
	return data, nil
}

// update applies mutate to the stored record of id inside one transaction.
// The result is validated as a whole before anything is written; mutate
// returning false leaves the record untouched.
func (r *Repository) update(ctx context.Context, id string, withService bool, mutate func(*models.HomologationData) (bool, error)) (*models.Homologation, error) {
	var h *models.Homologation
	err := r.store.RunInTx(ctx, func(ctx context.Context) error {
		data, err := r.load(ctx, id)
		if err != nil {
			return err
		}
		changed, err := mutate(data)
		if err != nil {
			return err
		}
		h, err = models.NewHomologation(*data, r.ref)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		next := h.Data()
		return r.saveProjections(ctx, &next, withService)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// saveProjections writes the canonical record, then its service projection.
func (r *Repository) saveProjections(ctx context.Context, data *models.HomologationData, withService bool) error {
	if err := r.store.SaveHomologation(ctx, data); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save homologation")
	}
	if !withService {
		return nil
	}
	service := models.ServiceProjection(*data)
	if err := r.store.SaveService(ctx, &service); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save service")
	}
	return nil
}

func (r *Repository) recordCompleteness(ctx context.Context, h *models.Homologation) {
	c := h.Completeness()
	r.record(ctx, journal.NewCompletenessChanged(h.ID, c.TotalMeasures, c.CompleteMeasures, r.now()))
}

// record never fails the caller: the write it describes is already committed.
func (r *Repository) record(ctx context.Context, e journal.Event) {
	if err := r.journal.Record(ctx, e); err != nil {
		r.logger.ErrorContext(ctx, "failed to record journal event",
			"error", err,
			"event_type", string(e.Type),
			"service_id", e.ServiceID(),
		)
		if r.metrics != nil {
			r.metrics.IncrementJournalFailure(string(e.Type))
		}
	}
}
