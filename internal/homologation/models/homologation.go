package models

import (
	"encoding/json"
	"slices"

	"mss/internal/referentiel"
)

// HomologationData is the canonical persisted record of a homologation.
type HomologationData struct {
	ID                   string                 `json:"id"`
	DescriptionService   ServiceDescriptionData `json:"descriptionService"`
	MesuresGenerales     []GeneralMeasureData   `json:"mesuresGenerales,omitempty"`
	MesuresSpecifiques   []SpecificMeasureData  `json:"mesuresSpecifiques,omitempty"`
	PartiesPrenantes     StakeholdersData       `json:"partiesPrenantes"`
	RisquesGeneraux      []GeneralRiskData      `json:"risquesGeneraux,omitempty"`
	RisquesSpecifiques   []SpecificRiskData     `json:"risquesSpecifiques,omitempty"`
	RolesResponsabilites RolesData              `json:"rolesResponsabilites"`
	AvisExpertCyber      ExpertOpinionData      `json:"avisExpertCyber"`
	Dossiers             []DossierData          `json:"dossiers,omitempty"`
}

// Clone returns a copy sharing no slice with d.
func (d HomologationData) Clone() HomologationData {
	d.DescriptionService = d.DescriptionService.clone()
	d.MesuresGenerales = slices.Clone(d.MesuresGenerales)
	d.MesuresSpecifiques = slices.Clone(d.MesuresSpecifiques)
	d.RisquesGeneraux = slices.Clone(d.RisquesGeneraux)
	d.RisquesSpecifiques = slices.Clone(d.RisquesSpecifiques)
	d.RolesResponsabilites = d.RolesResponsabilites.clone()
	d.Dossiers = slices.Clone(d.Dossiers)
	return d
}

// ServiceData is the denormalized service projection of a homologation. It
// shares the homologation id.
type ServiceData struct {
	ID                 string                 `json:"id"`
	DescriptionService ServiceDescriptionData `json:"descriptionService"`
	MesuresGenerales   []GeneralMeasureData   `json:"mesuresGenerales,omitempty"`
	MesuresSpecifiques []SpecificMeasureData  `json:"mesuresSpecifiques,omitempty"`
}

// ServiceProjection derives the service record from the canonical one.
func ServiceProjection(h HomologationData) ServiceData {
	h = h.Clone()
	return ServiceData{
		ID:                 h.ID,
		DescriptionService: h.DescriptionService,
		MesuresGenerales:   h.MesuresGenerales,
		MesuresSpecifiques: h.MesuresSpecifiques,
	}
}

// Homologation is the security approval case of one service.
type Homologation struct {
	ID            string
	Creator       *User
	Contributors  []User
	Description   *ServiceDescription
	Measures      *Measures
	Stakeholders  *Stakeholders
	Risks         *Risks
	Roles         *Roles
	ExpertOpinion *ExpertOpinion
	Dossiers      *Dossiers
}

type Option func(*Homologation)

func WithCreator(u User) Option {
	return func(h *Homologation) {
		h.Creator = &u
	}
}

func WithContributors(users []User) Option {
	return func(h *Homologation) {
		h.Contributors = slices.Clone(users)
	}
}

// NewHomologation builds the aggregate, validating every part against ref.
func NewHomologation(data HomologationData, ref *referentiel.Referentiel, opts ...Option) (*Homologation, error) {
	description, err := NewServiceDescription(data.DescriptionService, ref)
	if err != nil {
		return nil, err
	}
	measures, err := NewMeasures(data.MesuresGenerales, data.MesuresSpecifiques, ref)
	if err != nil {
		return nil, err
	}
	risks, err := NewRisks(data.RisquesGeneraux, data.RisquesSpecifiques, ref)
	if err != nil {
		return nil, err
	}
	opinion, err := NewExpertOpinion(data.AvisExpertCyber, ref)
	if err != nil {
		return nil, err
	}
	dossiers, err := NewDossiers(data.Dossiers, ref)
	if err != nil {
		return nil, err
	}
	h := &Homologation{
		ID:            data.ID,
		Contributors:  []User{},
		Description:   description,
		Measures:      measures,
		Stakeholders:  NewStakeholders(data.PartiesPrenantes),
		Risks:         risks,
		Roles:         NewRoles(data.RolesResponsabilites),
		ExpertOpinion: opinion,
		Dossiers:      dossiers,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Homologation) ServiceName() string {
	return h.Description.Name()
}

func (h *Homologation) Presentation() string {
	return h.Description.Presentation()
}

func (h *Homologation) DataLocationDescription() string {
	return h.Description.DataLocationDescription()
}

func (h *Homologation) AuthorityDescription() string {
	return h.Stakeholders.AuthorityDescription()
}

func (h *Homologation) PreparationTeamDescription() string {
	return h.Stakeholders.PreparationTeamDescription()
}

// CurrentDossier returns the open dossier, nil if there is none.
func (h *Homologation) CurrentDossier() *Dossier {
	return h.Dossiers.Current()
}

func (h *Homologation) DossierCount() int {
	return h.Dossiers.Len()
}

func (h *Homologation) SpecificMeasures() []SpecificMeasureData {
	return h.Measures.Specific()
}

func (h *Homologation) SpecificRisks() []SpecificRiskData {
	return h.Risks.Specific()
}

func (h *Homologation) Completeness() Completeness {
	return h.Measures.Completeness()
}

// Data rebuilds the canonical record.
func (h *Homologation) Data() HomologationData {
	return HomologationData{
		ID:                   h.ID,
		DescriptionService:   h.Description.Data(),
		MesuresGenerales:     h.Measures.General(),
		MesuresSpecifiques:   h.Measures.Specific(),
		PartiesPrenantes:     h.Stakeholders.Data(),
		RisquesGeneraux:      h.Risks.General(),
		RisquesSpecifiques:   h.Risks.Specific(),
		RolesResponsabilites: h.Roles.Data(),
		AvisExpertCyber:      h.ExpertOpinion.Data(),
		Dossiers:             h.Dossiers.Data(),
	}
}

type summary struct {
	ID           string `json:"id"`
	Creator      *User  `json:"createur,omitempty"`
	Contributors []User `json:"contributeurs"`
	ServiceName  string `json:"nomService"`
}

// MarshalJSON renders a summary of the homologation, not the full record.
// Use Data for persistence.
func (h *Homologation) MarshalJSON() ([]byte, error) {
	contributors := h.Contributors
	if contributors == nil {
		contributors = []User{}
	}
	return json.Marshal(summary{
		ID:           h.ID,
		Creator:      h.Creator,
		Contributors: contributors,
		ServiceName:  h.ServiceName(),
	})
}
