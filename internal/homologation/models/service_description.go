package models

import (
	"slices"
	"strings"

	"mss/internal/referentiel"
)

// Input statuses of a service description.
const (
	InputStatusToFill     = "aSaisir"
	InputStatusToComplete = "aCompleter"
	InputStatusComplete   = "complete"
)

type ServiceDescriptionData struct {
	NomService               string   `json:"nomService,omitempty"`
	Presentation             string   `json:"presentation,omitempty"`
	NatureService            []string `json:"natureService,omitempty"`
	ProvenanceService        string   `json:"provenanceService,omitempty"`
	LocalisationDonnees      string   `json:"localisationDonnees,omitempty"`
	DelaiAvantImpactCritique string   `json:"delaiAvantImpactCritique,omitempty"`
	Hebergeur                string   `json:"hebergeur,omitempty"`
	StructureDeveloppement   string   `json:"structureDeveloppement,omitempty"`
}

func (d ServiceDescriptionData) clone() ServiceDescriptionData {
	d.NatureService = slices.Clone(d.NatureService)
	return d
}

func (d ServiceDescriptionData) requiredFilled() []bool {
	return []bool{
		strings.TrimSpace(d.NomService) != "",
		len(d.NatureService) > 0,
		d.ProvenanceService != "",
		d.LocalisationDonnees != "",
		d.DelaiAvantImpactCritique != "",
	}
}

// ValidateServiceDescriptionForCreation checks the fields a service needs to
// exist at all.
func ValidateServiceDescriptionForCreation(data ServiceDescriptionData) error {
	for _, filled := range data.requiredFilled() {
		if !filled {
			return missingRequiredData()
		}
	}
	return nil
}

// ServiceDescription describes the service under homologation.
type ServiceDescription struct {
	data ServiceDescriptionData
	ref  *referentiel.Referentiel
}

// NewServiceDescription checks every enumerated value that is present against
// ref. Required fields are only enforced by ValidateServiceDescriptionForCreation.
func NewServiceDescription(data ServiceDescriptionData, ref *referentiel.Referentiel) (*ServiceDescription, error) {
	for _, nature := range data.NatureService {
		if !ref.HasServiceNature(nature) {
			return nil, invalidServiceDescription("natureService", nature)
		}
	}
	checks := []struct {
		field, value string
		known        func(string) bool
	}{
		{"provenanceService", data.ProvenanceService, ref.HasServiceOrigin},
		{"localisationDonnees", data.LocalisationDonnees, ref.HasDataLocation},
		{"delaiAvantImpactCritique", data.DelaiAvantImpactCritique, ref.HasCriticalImpactDelay},
	}
	for _, c := range checks {
		if c.value != "" && !c.known(c.value) {
			return nil, invalidServiceDescription(c.field, c.value)
		}
	}
	return &ServiceDescription{data: data.clone(), ref: ref}, nil
}

func (s *ServiceDescription) Name() string {
	return s.data.NomService
}

func (s *ServiceDescription) Presentation() string {
	return s.data.Presentation
}

// ServiceNatureDescription joins the labels of the service natures.
func (s *ServiceDescription) ServiceNatureDescription() string {
	if len(s.data.NatureService) == 0 {
		return "Nature du service non renseignée"
	}
	labels := make([]string, 0, len(s.data.NatureService))
	for _, nature := range s.data.NatureService {
		labels = append(labels, s.ref.ServiceNatureDescription(nature))
	}
	return strings.Join(labels, ", ")
}

func (s *ServiceDescription) DataLocationDescription() string {
	if s.data.LocalisationDonnees == "" {
		return ""
	}
	return s.ref.DataLocationDescription(s.data.LocalisationDonnees)
}

// InputStatus tells how far the required fields have been filled in.
func (s *ServiceDescription) InputStatus() string {
	filled := 0
	required := s.data.requiredFilled()
	for _, ok := range required {
		if ok {
			filled++
		}
	}
	switch filled {
	case 0:
		return InputStatusToFill
	case len(required):
		return InputStatusComplete
	default:
		return InputStatusToComplete
	}
}

func (s *ServiceDescription) Data() ServiceDescriptionData {
	return s.data.clone()
}
