package models

import (
	"slices"

	"mss/internal/referentiel"
)

type GeneralRiskData struct {
	ID            string `json:"id"`
	Commentaire   string `json:"commentaire,omitempty"`
	NiveauGravite string `json:"niveauGravite,omitempty"`
}

type SpecificRiskData struct {
	Description   string `json:"description,omitempty"`
	Commentaire   string `json:"commentaire,omitempty"`
	NiveauGravite string `json:"niveauGravite,omitempty"`
}

type Risks struct {
	general  []GeneralRiskData
	specific []SpecificRiskData
}

func NewRisks(general []GeneralRiskData, specific []SpecificRiskData, ref *referentiel.Referentiel) (*Risks, error) {
	for _, r := range general {
		if !ref.HasRisk(r.ID) {
			return nil, unknownRisk(r.ID)
		}
		if r.NiveauGravite != "" && !ref.HasSeverity(r.NiveauGravite) {
			return nil, invalidSeverity(r.NiveauGravite)
		}
	}
	for _, r := range specific {
		if r.NiveauGravite != "" && !ref.HasSeverity(r.NiveauGravite) {
			return nil, invalidSeverity(r.NiveauGravite)
		}
	}
	return &Risks{general: slices.Clone(general), specific: slices.Clone(specific)}, nil
}

func (r *Risks) General() []GeneralRiskData {
	return slices.Clone(r.general)
}

func (r *Risks) Specific() []SpecificRiskData {
	return slices.Clone(r.specific)
}

// UpsertGeneralRisk replaces the risk with the same id or appends it.
func UpsertGeneralRisk(existing []GeneralRiskData, risk GeneralRiskData) []GeneralRiskData {
	out := slices.Clone(existing)
	i := slices.IndexFunc(out, func(r GeneralRiskData) bool { return r.ID == risk.ID })
	if i >= 0 {
		out[i] = risk
		return out
	}
	return append(out, risk)
}
