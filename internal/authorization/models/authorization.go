package models

import dErrors "mss/pkg/domain-errors"

// Type is the role a grant gives a user on a homologation.
type Type string

const (
	TypeCreator     Type = "createur"
	TypeContributor Type = "contributeur"
)

func (t Type) IsValid() bool {
	return t == TypeCreator || t == TypeContributor
}

// Authorization links a user to a homologation. The service id always equals
// the homologation id since both projections share it.
type Authorization struct {
	ID             string `json:"id"`
	UserID         string `json:"idUtilisateur"`
	HomologationID string `json:"idHomologation"`
	ServiceID      string `json:"idService"`
	Type           Type   `json:"type"`
}

// NewAuthorization validates the grant before it is stored.
func NewAuthorization(id, userID, homologationID string, t Type) (*Authorization, error) {
	if id == "" || userID == "" || homologationID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "authorization requires id, user and homologation")
	}
	if !t.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown authorization type "+string(t))
	}
	return &Authorization{
		ID:             id,
		UserID:         userID,
		HomologationID: homologationID,
		ServiceID:      homologationID,
		Type:           t,
	}, nil
}

func (a *Authorization) IsCreator() bool {
	return a.Type == TypeCreator
}
