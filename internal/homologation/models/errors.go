package models

import (
	"errors"
	"fmt"

	dErrors "mss/pkg/domain-errors"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// so callers can match with errors.Is while the domain error carries the
// message shown to users.
var (
	ErrInvalidValidityDuration   = errors.New("invalid validity duration")
	ErrInvalidHomologationDate   = errors.New("invalid homologation date")
	ErrInvalidDossiers           = errors.New("more than one open dossier")
	ErrMissingRequiredData       = errors.New("missing required data")
	ErrInvalidServiceDescription = errors.New("invalid service description")
	ErrUnknownMeasure            = errors.New("unknown measure")
	ErrInvalidMeasureStatus      = errors.New("invalid measure status")
	ErrUnknownMeasureCategory    = errors.New("unknown measure category")
	ErrUnknownRisk               = errors.New("unknown risk")
	ErrInvalidSeverity           = errors.New("invalid severity")
	ErrInvalidExpertOpinion      = errors.New("invalid expert opinion")
	ErrServiceNameTaken          = errors.New("service name taken")
	ErrHomologationNotFound      = errors.New("homologation not found")
	ErrDossierNotFinalisable     = errors.New("dossier not finalisable")
)

func invalidValidityDuration(value string) error {
	return dErrors.Wrap(ErrInvalidValidityDuration, dErrors.CodeValidation,
		fmt.Sprintf("La durée de validité %q est invalide", value))
}

func invalidHomologationDate(value string) error {
	return dErrors.Wrap(ErrInvalidHomologationDate, dErrors.CodeValidation,
		fmt.Sprintf("La date %q est invalide", value))
}

func invalidDossiers() error {
	return dErrors.Wrap(ErrInvalidDossiers, dErrors.CodeInvariantViolation,
		"Les dossiers ne peuvent pas avoir plus d'un dossier non finalisé")
}

func missingRequiredData() error {
	return dErrors.Wrap(ErrMissingRequiredData, dErrors.CodeValidation,
		"Certaines données obligatoires ne sont pas renseignées")
}

func invalidServiceDescription(field, value string) error {
	return dErrors.Wrap(ErrInvalidServiceDescription, dErrors.CodeValidation,
		fmt.Sprintf("La valeur %q du champ %q est invalide", value, field))
}

func unknownMeasure(id string) error {
	return dErrors.Wrap(ErrUnknownMeasure, dErrors.CodeValidation,
		fmt.Sprintf("La mesure %q est inconnue", id))
}

func invalidMeasureStatus(status string) error {
	return dErrors.Wrap(ErrInvalidMeasureStatus, dErrors.CodeValidation,
		fmt.Sprintf("Le statut %q est invalide", status))
}

func unknownMeasureCategory(category string) error {
	return dErrors.Wrap(ErrUnknownMeasureCategory, dErrors.CodeValidation,
		fmt.Sprintf("La catégorie %q est inconnue", category))
}

func unknownRisk(id string) error {
	return dErrors.Wrap(ErrUnknownRisk, dErrors.CodeValidation,
		fmt.Sprintf("Le risque %q est inconnu", id))
}

func invalidSeverity(level string) error {
	return dErrors.Wrap(ErrInvalidSeverity, dErrors.CodeValidation,
		fmt.Sprintf("Le niveau de gravité %q est invalide", level))
}

func invalidExpertOpinion(field, value string) error {
	return dErrors.Wrap(ErrInvalidExpertOpinion, dErrors.CodeValidation,
		fmt.Sprintf("La valeur %q du champ %q de l'avis expert est invalide", value, field))
}

// NewServiceNameTakenError reports that serviceName is already used by another
// homologation of the same creator.
func NewServiceNameTakenError(serviceName string) error {
	return dErrors.Wrap(ErrServiceNameTaken, dErrors.CodeConflict,
		fmt.Sprintf("Le nom du service %q existe déjà pour une autre homologation", serviceName))
}

// NewHomologationNotFoundError reports an unknown homologation identifier.
func NewHomologationNotFoundError(id string) error {
	return dErrors.Wrap(ErrHomologationNotFound, dErrors.CodeNotFound,
		fmt.Sprintf("Homologation %q non trouvée", id))
}

// NewDossierNotFinalisableError reports an attempt to finalise an incomplete dossier.
func NewDossierNotFinalisableError() error {
	return dErrors.Wrap(ErrDossierNotFinalisable, dErrors.CodeConflict,
		"Le dossier n'est pas complet et ne peut pas être finalisé")
}
