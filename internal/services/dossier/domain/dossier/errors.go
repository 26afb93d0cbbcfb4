package dossier

import apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"

var (
	// ErrScenarioNotFound indicates a scenario id that is not in the history.
	ErrScenarioNotFound = apperrors.New(apperrors.CodeScenarioNotFound, "scenario not found")
	// ErrInvalidOutcome indicates an outcome outside the enumeration.
	ErrInvalidOutcome = apperrors.New(apperrors.CodeOutcomeInvalid, "scenario outcome is not recognised")
	// ErrInvalidStatKind indicates a statistic kind outside the enumeration.
	ErrInvalidStatKind = apperrors.New(apperrors.CodeStatKindInvalid, "statistic kind is not recognised")
	// ErrInvalidScenarioIndex indicates a history position out of range.
	ErrInvalidScenarioIndex = apperrors.New(apperrors.CodeScenarioIndexInvalid, "scenario position is out of range")
)

func scenarioError(sentinel *apperrors.Error, id ScenarioID) error {
	return apperrors.Detail(sentinel, map[string]string{"scenario_id": string(id)})
}
