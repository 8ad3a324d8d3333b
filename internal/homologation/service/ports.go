package service

import (
	"context"

	authmodels "mss/internal/authorization/models"
	"mss/internal/homologation/models"
	"mss/internal/journal"
)

// Store is the persistence the repository writes through. Both projections
// and the grants must be written with the context handed to RunInTx's fn.
type Store interface {
	Homologation(ctx context.Context, id string) (*models.HomologationData, error)
	SaveHomologation(ctx context.Context, h *models.HomologationData) error
	DeleteHomologation(ctx context.Context, id string) error
	SaveService(ctx context.Context, s *models.ServiceData) error
	DeleteService(ctx context.Context, id string) error
	User(ctx context.Context, id string) (*models.User, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Authorizations interface {
	GrantCreator(ctx context.Context, userID, homologationID string) (*authmodels.Authorization, error)
	ForUser(ctx context.Context, userID string) ([]*authmodels.Authorization, error)
	ForHomologation(ctx context.Context, homologationID string) ([]*authmodels.Authorization, error)
	DeleteForHomologation(ctx context.Context, homologationID string) (int, error)
}

type Journal interface {
	Record(ctx context.Context, e journal.Event) error
}
