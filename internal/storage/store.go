// Package storage defines the persistence adapter of homologations, their
// service projection, users and authorization grants.
//
// Every record is stored as a JSON document keyed by its id. Reads return
// copies: mutating a returned value never changes stored state. Deleting an
// unknown id is not an error.
package storage

import (
	"context"
	"time"

	authmodels "mss/internal/authorization/models"
	"mss/internal/homologation/models"
)

// DefaultTxTimeout bounds a transaction whose context has no deadline.
const DefaultTxTimeout = 5 * time.Second

type Adapter interface {
	Homologation(ctx context.Context, id string) (*models.HomologationData, error)
	Homologations(ctx context.Context) ([]*models.HomologationData, error)
	SaveHomologation(ctx context.Context, h *models.HomologationData) error
	DeleteHomologation(ctx context.Context, id string) error

	Service(ctx context.Context, id string) (*models.ServiceData, error)
	Services(ctx context.Context) ([]*models.ServiceData, error)
	SaveService(ctx context.Context, s *models.ServiceData) error
	DeleteService(ctx context.Context, id string) error

	User(ctx context.Context, id string) (*models.User, error)
	Users(ctx context.Context) ([]*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error

	Authorization(ctx context.Context, id string) (*authmodels.Authorization, error)
	Authorizations(ctx context.Context) ([]*authmodels.Authorization, error)
	AuthorizationsByUser(ctx context.Context, userID string) ([]*authmodels.Authorization, error)
	AuthorizationsByHomologation(ctx context.Context, homologationID string) ([]*authmodels.Authorization, error)
	SaveAuthorization(ctx context.Context, a *authmodels.Authorization) error
	DeleteAuthorization(ctx context.Context, id string) error
	DeleteAuthorizations(ctx context.Context, ids []string) error

	// RunInTx runs fn so that every write made through the context it
	// receives is applied atomically. Nested calls join the outer transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
