package models

import "mss/internal/referentiel"

func testReferentiel() *referentiel.Referentiel {
	return referentiel.New(referentiel.Data{
		RenewalDurations: map[string]referentiel.RenewalDuration{
			"unAn":    {Description: "1 an", Months: 12},
			"sixMois": {Description: "6 mois", Months: 6},
		},
		MeasureStatuses:   map[string]string{MeasureDone: "Fait", MeasureInProgress: "En cours"},
		MeasureCategories: map[string]string{"gouvernance": "Gouvernance"},
		Measures: map[string]referentiel.Measure{
			"m1": {Description: "Mesure 1", Category: "gouvernance"},
			"m2": {Description: "Mesure 2", Category: "gouvernance"},
		},
		Risks:                map[string]referentiel.Label{"r1": {Description: "Risque 1"}},
		Severities:           map[string]referentiel.Label{"grave": {Description: "Grave"}},
		ServiceNatures:       map[string]referentiel.Label{"siteInternet": {Description: "Site Internet"}, "api": {Description: "API"}},
		ServiceOrigins:       map[string]referentiel.Label{"developpement": {Description: "Développement"}},
		DataLocations:        map[string]referentiel.Label{"france": {Description: "France"}},
		CriticalImpactDelays: map[string]referentiel.Label{"uneJournee": {Description: "Une journée"}},
		ExpertOpinions:       map[string]referentiel.Label{"favorable": {Description: "Favorable"}},
	})
}

func completeDescription(name string) ServiceDescriptionData {
	return ServiceDescriptionData{
		NomService:               name,
		NatureService:            []string{"siteInternet"},
		ProvenanceService:        "developpement",
		LocalisationDonnees:      "france",
		DelaiAvantImpactCritique: "uneJournee",
	}
}
