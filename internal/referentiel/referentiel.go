// Package referentiel exposes the read-only catalog of enumerations a
// homologation is validated against: renewal durations, measures, risks and
// the service description vocabularies.
//
// A Referentiel is built once at startup and injected into every constructor
// that needs it. It is never mutated afterwards, so it is safe for concurrent
// use without locking.
package referentiel

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed referentiel.yaml
var defaultCatalog []byte

// Label is a catalog entry that only carries a human readable description.
type Label struct {
	Description string `yaml:"description"`
}

// RenewalDuration is a validity duration a dossier can be granted for.
type RenewalDuration struct {
	Description string `yaml:"description"`
	Months      int    `yaml:"nbMoisDecalage"`
}

// Measure is a general security measure of the catalog.
type Measure struct {
	Description string `yaml:"description"`
	Category    string `yaml:"categorie"`
}

// Data is the raw catalog, keyed by identifier.
type Data struct {
	RenewalDurations     map[string]RenewalDuration `yaml:"echeancesRenouvellement"`
	MeasureStatuses      map[string]string          `yaml:"statutsMesures"`
	MeasureCategories    map[string]string          `yaml:"categoriesMesures"`
	Measures             map[string]Measure         `yaml:"mesures"`
	Risks                map[string]Label           `yaml:"risques"`
	Severities           map[string]Label           `yaml:"niveauxGravite"`
	ServiceNatures       map[string]Label           `yaml:"naturesService"`
	ServiceOrigins       map[string]Label           `yaml:"provenancesService"`
	DataLocations        map[string]Label           `yaml:"localisationsDonnees"`
	CriticalImpactDelays map[string]Label           `yaml:"delaisAvantImpactCritique"`
	ExpertOpinions       map[string]Label           `yaml:"avisExpertCyber"`
}

// Referentiel answers catalog lookups.
type Referentiel struct {
	data Data
}

// New wraps already decoded catalog data.
func New(data Data) *Referentiel {
	return &Referentiel{data: data}
}

// Empty returns a catalog without any entry. Every optional enumerated value is
// rejected against it, absent values are still accepted.
func Empty() *Referentiel {
	return &Referentiel{}
}

// Parse decodes a YAML catalog.
func Parse(raw []byte) (*Referentiel, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode referentiel: %w", err)
	}
	return New(data), nil
}

// Load reads a YAML catalog from path, or the embedded default when path is empty.
func Load(path string) (*Referentiel, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read referentiel %s: %w", path, err)
	}
	return Parse(raw)
}

// Default returns the catalog embedded in the binary.
func Default() (*Referentiel, error) {
	return Parse(defaultCatalog)
}

func (r *Referentiel) RenewalDurationIDs() []string {
	return sortedKeys(r.data.RenewalDurations)
}

func (r *Referentiel) HasRenewalDuration(id string) bool {
	_, ok := r.data.RenewalDurations[id]
	return ok
}

func (r *Referentiel) RenewalDurationDescription(id string) string {
	return r.data.RenewalDurations[id].Description
}

// RenewalDurationMonths is the number of months a dossier stays valid for the
// given duration, zero when unknown.
func (r *Referentiel) RenewalDurationMonths(id string) int {
	return r.data.RenewalDurations[id].Months
}

func (r *Referentiel) MeasureIDs() []string {
	return sortedKeys(r.data.Measures)
}

func (r *Referentiel) HasMeasure(id string) bool {
	_, ok := r.data.Measures[id]
	return ok
}

func (r *Referentiel) MeasureCategory(id string) string {
	return r.data.Measures[id].Category
}

func (r *Referentiel) HasMeasureCategory(id string) bool {
	_, ok := r.data.MeasureCategories[id]
	return ok
}

func (r *Referentiel) HasMeasureStatus(status string) bool {
	_, ok := r.data.MeasureStatuses[status]
	return ok
}

func (r *Referentiel) MeasureStatusDescription(status string) string {
	return r.data.MeasureStatuses[status]
}

func (r *Referentiel) HasRisk(id string) bool {
	_, ok := r.data.Risks[id]
	return ok
}

func (r *Referentiel) RiskDescription(id string) string {
	return r.data.Risks[id].Description
}

func (r *Referentiel) HasSeverity(id string) bool {
	_, ok := r.data.Severities[id]
	return ok
}

func (r *Referentiel) HasServiceNature(id string) bool {
	_, ok := r.data.ServiceNatures[id]
	return ok
}

func (r *Referentiel) ServiceNatureDescription(id string) string {
	return r.data.ServiceNatures[id].Description
}

func (r *Referentiel) HasServiceOrigin(id string) bool {
	_, ok := r.data.ServiceOrigins[id]
	return ok
}

func (r *Referentiel) HasDataLocation(id string) bool {
	_, ok := r.data.DataLocations[id]
	return ok
}

func (r *Referentiel) DataLocationDescription(id string) string {
	return r.data.DataLocations[id].Description
}

func (r *Referentiel) HasCriticalImpactDelay(id string) bool {
	_, ok := r.data.CriticalImpactDelays[id]
	return ok
}

func (r *Referentiel) HasExpertOpinion(id string) bool {
	_, ok := r.data.ExpertOpinions[id]
	return ok
}

func (r *Referentiel) ExpertOpinionDescription(id string) string {
	return r.data.ExpertOpinions[id].Description
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
