package models

import (
	"slices"

	"mss/internal/referentiel"
)

// Measure statuses.
const (
	MeasureDone        = "fait"
	MeasureInProgress  = "enCours"
	MeasureNotDone     = "nonFait"
	MeasureNotRetained = "nonRetenu"
)

// GeneralMeasureData is the status of a catalog measure for a service.
type GeneralMeasureData struct {
	ID        string `json:"id"`
	Statut    string `json:"statut,omitempty"`
	Modalites string `json:"modalites,omitempty"`
}

// SpecificMeasureData is a measure added by the service team outside the catalog.
type SpecificMeasureData struct {
	Description string `json:"description,omitempty"`
	Categorie   string `json:"categorie,omitempty"`
	Statut      string `json:"statut,omitempty"`
	Modalites   string `json:"modalites,omitempty"`
}

// Completeness counts how many measures have a status.
type Completeness struct {
	TotalMeasures    int `json:"nombreTotalMesures"`
	CompleteMeasures int `json:"nombreMesuresCompletes"`
}

type Measures struct {
	general  []GeneralMeasureData
	specific []SpecificMeasureData
	ref      *referentiel.Referentiel
}

func NewMeasures(general []GeneralMeasureData, specific []SpecificMeasureData, ref *referentiel.Referentiel) (*Measures, error) {
	for _, m := range general {
		if !ref.HasMeasure(m.ID) {
			return nil, unknownMeasure(m.ID)
		}
		if m.Statut != "" && !ref.HasMeasureStatus(m.Statut) {
			return nil, invalidMeasureStatus(m.Statut)
		}
	}
	for _, m := range specific {
		if m.Categorie != "" && !ref.HasMeasureCategory(m.Categorie) {
			return nil, unknownMeasureCategory(m.Categorie)
		}
		if m.Statut != "" && !ref.HasMeasureStatus(m.Statut) {
			return nil, invalidMeasureStatus(m.Statut)
		}
	}
	return &Measures{
		general:  slices.Clone(general),
		specific: slices.Clone(specific),
		ref:      ref,
	}, nil
}

func (m *Measures) General() []GeneralMeasureData {
	return slices.Clone(m.general)
}

func (m *Measures) Specific() []SpecificMeasureData {
	return slices.Clone(m.specific)
}

// Completeness counts every catalog measure plus the specific ones, and those
// among them that have a status.
func (m *Measures) Completeness() Completeness {
	c := Completeness{TotalMeasures: len(m.ref.MeasureIDs()) + len(m.specific)}
	for _, g := range m.general {
		if g.Statut != "" {
			c.CompleteMeasures++
		}
	}
	for _, s := range m.specific {
		if s.Statut != "" {
			c.CompleteMeasures++
		}
	}
	return c
}

// UpsertGeneralMeasures replaces the general measures sharing an id with
// updates and appends the others, keeping existing order.
func UpsertGeneralMeasures(existing, updates []GeneralMeasureData) []GeneralMeasureData {
	out := slices.Clone(existing)
	for _, u := range updates {
		i := slices.IndexFunc(out, func(m GeneralMeasureData) bool { return m.ID == u.ID })
		if i >= 0 {
			out[i] = u
			continue
		}
		out = append(out, u)
	}
	return out
}
