package models

import (
	"encoding/json"
	"slices"
	"time"

	"mss/internal/referentiel"
)

const (
	dateLayout       = "2006-01-02"
	frenchDateLayout = "02/01/2006"
)

// DossierData is the persisted shape of a dossier.
type DossierData struct {
	ID               string `json:"id"`
	DateHomologation string `json:"dateHomologation,omitempty"`
	DureeValidite    string `json:"dureeValidite,omitempty"`
	Finalise         bool   `json:"finalise"`
}

// UnmarshalJSON accepts any JSON value for finalise and keeps its truthiness:
// false, 0, "", null and an absent field decode to false, anything else to true.
func (d *DossierData) UnmarshalJSON(raw []byte) error {
	type plain DossierData
	var aux struct {
		plain
		Finalise json.RawMessage `json:"finalise"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}
	*d = DossierData(aux.plain)
	d.Finalise = truthy(aux.Finalise)
	return nil
}

func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// Dossier is one approval cycle of a homologation. A dossier without date or
// validity duration is a draft.
type Dossier struct {
	ID         string
	Date       time.Time
	ValidityID string
	Finalised  bool
	rawDate    string
	ref        *referentiel.Referentiel
}

// NewDossier validates data against the renewal durations of ref.
func NewDossier(data DossierData, ref *referentiel.Referentiel) (*Dossier, error) {
	if data.DureeValidite != "" && !ref.HasRenewalDuration(data.DureeValidite) {
		return nil, invalidValidityDuration(data.DureeValidite)
	}
	d := &Dossier{
		ID:         data.ID,
		ValidityID: data.DureeValidite,
		Finalised:  data.Finalise,
		rawDate:    data.DateHomologation,
		ref:        ref,
	}
	if data.DateHomologation != "" {
		date, err := parseDate(data.DateHomologation)
		if err != nil {
			return nil, invalidHomologationDate(data.DateHomologation)
		}
		d.Date = date
	}
	return d, nil
}

func parseDate(value string) (time.Time, error) {
	if date, err := time.Parse(dateLayout, value); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, value)
}

// IsComplete reports whether both the decision date and the validity duration are set.
func (d *Dossier) IsComplete() bool {
	return d.rawDate != "" && d.ValidityID != ""
}

func (d *Dossier) DateDescription() string {
	if d.rawDate == "" {
		return ""
	}
	return d.Date.Format(frenchDateLayout)
}

func (d *Dossier) ValidityDurationDescription() string {
	if d.ValidityID == "" {
		return ""
	}
	return d.ref.RenewalDurationDescription(d.ValidityID)
}

// NextDateDescription is the date the homologation has to be renewed, empty
// while the dossier is incomplete.
func (d *Dossier) NextDateDescription() string {
	if !d.IsComplete() {
		return ""
	}
	return d.Date.AddDate(0, d.ref.RenewalDurationMonths(d.ValidityID), 0).Format(frenchDateLayout)
}

func (d *Dossier) Data() DossierData {
	return DossierData{
		ID:               d.ID,
		DateHomologation: d.rawDate,
		DureeValidite:    d.ValidityID,
		Finalise:         d.Finalised,
	}
}

// Dossiers is the ordered list of dossiers of a homologation. At most one of
// them is open.
type Dossiers struct {
	items []*Dossier
}

func NewDossiers(items []DossierData, ref *referentiel.Referentiel) (*Dossiers, error) {
	ds := &Dossiers{items: make([]*Dossier, 0, len(items))}
	for _, item := range items {
		d, err := NewDossier(item, ref)
		if err != nil {
			return nil, err
		}
		ds.items = append(ds.items, d)
	}
	open := 0
	for _, d := range ds.items {
		if !d.Finalised {
			open++
		}
	}
	if open > 1 {
		return nil, invalidDossiers()
	}
	return ds, nil
}

// Current returns the open dossier, nil when every dossier is finalised.
func (ds *Dossiers) Current() *Dossier {
	for _, d := range ds.items {
		if !d.Finalised {
			return d
		}
	}
	return nil
}

// Finalised returns every dossier except the open one.
func (ds *Dossiers) Finalised() []*Dossier {
	current := ds.Current()
	out := make([]*Dossier, 0, len(ds.items))
	for _, d := range ds.items {
		if d != current {
			out = append(out, d)
		}
	}
	return out
}

func (ds *Dossiers) Len() int {
	return len(ds.items)
}

func (ds *Dossiers) Item(i int) *Dossier {
	return ds.items[i]
}

func (ds *Dossiers) All() []*Dossier {
	return slices.Clone(ds.items)
}

func (ds *Dossiers) Data() []DossierData {
	out := make([]DossierData, 0, len(ds.items))
	for _, d := range ds.items {
		out = append(out, d.Data())
	}
	return out
}
