package models

import "mss/internal/referentiel"

const favorableOpinion = "favorable"

// ExpertOpinionData is the cybersecurity expert's opinion (avis expert cyber).
type ExpertOpinionData struct {
	Avis           string `json:"avis,omitempty"`
	DateExpiration string `json:"dateExpiration,omitempty"`
	Commentaire    string `json:"commentaire,omitempty"`
}

type ExpertOpinion struct {
	data ExpertOpinionData
	ref  *referentiel.Referentiel
}

// NewExpertOpinion checks the opinion against the catalog. The expiration is
// expressed as a renewal duration.
func NewExpertOpinion(data ExpertOpinionData, ref *referentiel.Referentiel) (*ExpertOpinion, error) {
	if data.Avis != "" && !ref.HasExpertOpinion(data.Avis) {
		return nil, invalidExpertOpinion("avis", data.Avis)
	}
	if data.DateExpiration != "" && !ref.HasRenewalDuration(data.DateExpiration) {
		return nil, invalidExpertOpinion("dateExpiration", data.DateExpiration)
	}
	return &ExpertOpinion{data: data, ref: ref}, nil
}

func (o *ExpertOpinion) IsProvided() bool {
	return o.data.Avis != ""
}

func (o *ExpertOpinion) Favorable() bool {
	return o.data.Avis == favorableOpinion
}

func (o *ExpertOpinion) Description() string {
	if o.data.Avis == "" {
		return ""
	}
	return o.ref.ExpertOpinionDescription(o.data.Avis)
}

func (o *ExpertOpinion) ExpiryDescription() string {
	if o.data.DateExpiration == "" {
		return ""
	}
	return o.ref.RenewalDurationDescription(o.data.DateExpiration)
}

func (o *ExpertOpinion) Data() ExpertOpinionData {
	return o.data
}
