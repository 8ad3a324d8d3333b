// Package service stores and queries the grants linking users to homologations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"mss/internal/authorization/models"
	dErrors "mss/pkg/domain-errors"
	"mss/pkg/platform/ids"
	"mss/pkg/platform/sentinel"
)

type Store interface {
	Authorization(ctx context.Context, id string) (*models.Authorization, error)
	AuthorizationsByUser(ctx context.Context, userID string) ([]*models.Authorization, error)
	AuthorizationsByHomologation(ctx context.Context, homologationID string) ([]*models.Authorization, error)
	SaveAuthorization(ctx context.Context, a *models.Authorization) error
	DeleteAuthorizations(ctx context.Context, ids []string) error
}

// Repository manages authorization grants. It never opens a transaction
// itself: callers pass a context already bound to one when a grant must be
// written together with other records.
type Repository struct {
	store  Store
	ids    ids.Generator
	logger *slog.Logger
}

type Option func(*Repository)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

func WithIDGenerator(gen ids.Generator) Option {
	return func(r *Repository) {
		r.ids = gen
	}
}

func New(store Store, opts ...Option) *Repository {
	r := &Repository{store: store, ids: ids.UUID{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GrantCreator records userID as the creator of homologationID.
func (r *Repository) GrantCreator(ctx context.Context, userID, homologationID string) (*models.Authorization, error) {
	return r.grant(ctx, userID, homologationID, models.TypeCreator)
}

// GrantContributor adds userID as contributor. A user already holding any
// grant on the homologation is rejected.
func (r *Repository) GrantContributor(ctx context.Context, userID, homologationID string) (*models.Authorization, error) {
	existing, err := r.store.AuthorizationsByHomologation(ctx, homologationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorizations")
	}
	for _, a := range existing {
		if a.UserID == userID {
			return nil, dErrors.New(dErrors.CodeConflict, "L'utilisateur a déjà accès à ce service")
		}
	}
	return r.grant(ctx, userID, homologationID, models.TypeContributor)
}

func (r *Repository) grant(ctx context.Context, userID, homologationID string, t models.Type) (*models.Authorization, error) {
	a, err := models.NewAuthorization(r.ids.NewID(), userID, homologationID, t)
	if err != nil {
		return nil, err
	}
	if err := r.store.SaveAuthorization(ctx, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save authorization")
	}
	r.logger.InfoContext(ctx, "authorization granted",
		"authorization_id", a.ID,
		"user_id", userID,
		"homologation_id", homologationID,
		"type", string(t),
	)
	return a, nil
}

func (r *Repository) Find(ctx context.Context, id string) (*models.Authorization, error) {
	a, err := r.store.Authorization(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Autorisation non trouvée")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization")
	}
	return a, nil
}

func (r *Repository) ForUser(ctx context.Context, userID string) ([]*models.Authorization, error) {
	list, err := r.store.AuthorizationsByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorizations")
	}
	return list, nil
}

func (r *Repository) ForHomologation(ctx context.Context, homologationID string) ([]*models.Authorization, error) {
	list, err := r.store.AuthorizationsByHomologation(ctx, homologationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorizations")
	}
	return list, nil
}

// CreatorOf returns the creator grant of a homologation, nil when none exists.
func (r *Repository) CreatorOf(ctx context.Context, homologationID string) (*models.Authorization, error) {
	list, err := r.ForHomologation(ctx, homologationID)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		if a.IsCreator() {
			return a, nil
		}
	}
	return nil, nil
}

// DeleteForHomologation removes every grant referencing homologationID and
// returns how many were removed.
func (r *Repository) DeleteForHomologation(ctx context.Context, homologationID string) (int, error) {
	list, err := r.ForHomologation(ctx, homologationID)
	if err != nil {
		return 0, err
	}
	if len(list) == 0 {
		return 0, nil
	}
	idList := make([]string, 0, len(list))
	for _, a := range list {
		idList = append(idList, a.ID)
	}
	if err := r.store.DeleteAuthorizations(ctx, idList); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete authorizations")
	}
	return len(idList), nil
}
