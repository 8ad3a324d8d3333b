package models

import (
	"fmt"
	"slices"
	"strings"
)

const notProvided = "Information non renseignée"

// StakeholdersData lists the people involved in the homologation (parties prenantes).
type StakeholdersData struct {
	AutoriteHomologation         string `json:"autoriteHomologation,omitempty"`
	FonctionAutoriteHomologation string `json:"fonctionAutoriteHomologation,omitempty"`
	PiloteProjet                 string `json:"piloteProjet,omitempty"`
	ExpertCybersecurite          string `json:"expertCybersecurite,omitempty"`
	DelegueProtectionDonnees     string `json:"delegueProtectionDonnees,omitempty"`
	Hebergeur                    string `json:"hebergeur,omitempty"`
	StructureDeveloppement       string `json:"structureDeveloppement,omitempty"`
}

type Stakeholders struct {
	data StakeholdersData
}

func NewStakeholders(data StakeholdersData) *Stakeholders {
	return &Stakeholders{data: data}
}

// AuthorityDescription renders the homologation authority with its function.
func (s *Stakeholders) AuthorityDescription() string {
	if s.data.AutoriteHomologation == "" {
		return notProvided
	}
	function := s.data.FonctionAutoriteHomologation
	if function == "" {
		function = "fonction non renseignée"
	}
	return fmt.Sprintf("%s (%s)", s.data.AutoriteHomologation, function)
}

// PreparationTeamDescription renders the project lead and the security expert.
func (s *Stakeholders) PreparationTeamDescription() string {
	var parts []string
	if s.data.PiloteProjet != "" {
		parts = append(parts, s.data.PiloteProjet+" (responsable du projet)")
	}
	if s.data.ExpertCybersecurite != "" {
		parts = append(parts, s.data.ExpertCybersecurite+" (expert cybersécurité)")
	}
	if len(parts) == 0 {
		return notProvided
	}
	return strings.Join(parts, ", ")
}

func (s *Stakeholders) DataProtectionOfficer() string {
	return s.data.DelegueProtectionDonnees
}

func (s *Stakeholders) Data() StakeholdersData {
	return s.data
}

// ActorData is a person acting in the homologation process.
type ActorData struct {
	Role     string `json:"role,omitempty"`
	Nom      string `json:"nom,omitempty"`
	Fonction string `json:"fonction,omitempty"`
}

// RolesData assigns responsibilities (rôles et responsabilités).
type RolesData struct {
	AutoriteHomologation         string      `json:"autoriteHomologation,omitempty"`
	FonctionAutoriteHomologation string      `json:"fonctionAutoriteHomologation,omitempty"`
	ExpertCybersecurite          string      `json:"expertCybersecurite,omitempty"`
	DelegueProtectionDonnees     string      `json:"delegueProtectionDonnees,omitempty"`
	PiloteProjet                 string      `json:"piloteProjet,omitempty"`
	ActeursHomologation          []ActorData `json:"acteursHomologation,omitempty"`
}

func (d RolesData) clone() RolesData {
	d.ActeursHomologation = slices.Clone(d.ActeursHomologation)
	return d
}

type Roles struct {
	data RolesData
}

func NewRoles(data RolesData) *Roles {
	return &Roles{data: data.clone()}
}

func (r *Roles) Actors() []ActorData {
	return slices.Clone(r.data.ActeursHomologation)
}

// ActorsDescription renders the homologation actors, one "name (role)" per actor.
func (r *Roles) ActorsDescription() string {
	if len(r.data.ActeursHomologation) == 0 {
		return notProvided
	}
	parts := make([]string, 0, len(r.data.ActeursHomologation))
	for _, a := range r.data.ActeursHomologation {
		if a.Role == "" {
			parts = append(parts, a.Nom)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Nom, a.Role))
	}
	return strings.Join(parts, ", ")
}

func (r *Roles) Data() RolesData {
	return r.data.clone()
}
