package dossier

import (
	"fmt"
	"strings"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
)

// Outcome is the result of a scenario.
type Outcome int

const (
	// OutcomeUnspecified represents an invalid outcome value.
	OutcomeUnspecified Outcome = iota
	// OutcomePending marks a scenario not yet fought.
	OutcomePending
	OutcomeMajorVictory
	OutcomeMinorVictory
	OutcomeLoss
)

// StatKind selects one figure of a unit's statistics.
type StatKind int

const (
	// StatKindUnspecified represents an invalid statistic kind.
	StatKindUnspecified StatKind = iota
	StatKindKills
	StatKindLosses
	StatKindExperience
)

// Valid reports whether o is a declared outcome.
func (o Outcome) Valid() bool {
	return o >= OutcomePending && o <= OutcomeLoss
}

// String returns the canonical label of o.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "PENDING"
	case OutcomeMajorVictory:
		return "MAJOR_VICTORY"
	case OutcomeMinorVictory:
		return "MINOR_VICTORY"
	case OutcomeLoss:
		return "LOSS"
	default:
		return fmt.Sprintf("OUTCOME(%d)", int(o))
	}
}

// Outcomes returns every declared outcome.
func Outcomes() []Outcome {
	return []Outcome{OutcomePending, OutcomeMajorVictory, OutcomeMinorVictory, OutcomeLoss}
}

// OutcomeFromLabel parses an outcome label such as "MAJOR_VICTORY" or
// "OUTCOME_MAJOR_VICTORY".
func OutcomeFromLabel(value string) (Outcome, error) {
	label := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "OUTCOME_")
	for _, o := range Outcomes() {
		if o.String() == label {
			return o, nil
		}
	}
	return OutcomeUnspecified, apperrors.Detail(ErrInvalidOutcome, map[string]string{"outcome": value})
}

func validateOutcome(o Outcome) error {
	if o.Valid() {
		return nil
	}
	return apperrors.Detail(ErrInvalidOutcome, map[string]string{"outcome": fmt.Sprint(int(o))})
}

// Valid reports whether k is a declared statistic kind.
func (k StatKind) Valid() bool {
	return k >= StatKindKills && k <= StatKindExperience
}

// String returns the canonical label of k.
func (k StatKind) String() string {
	switch k {
	case StatKindKills:
		return "KILLS"
	case StatKindLosses:
		return "LOSSES"
	case StatKindExperience:
		return "EXPERIENCE"
	default:
		return fmt.Sprintf("STAT_KIND(%d)", int(k))
	}
}

// StatKindFromLabel parses a statistic kind label, e.g. "kills".
func StatKindFromLabel(value string) (StatKind, error) {
	label := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "STAT_KIND_")
	for k := StatKindKills; k <= StatKindExperience; k++ {
		if k.String() == label {
			return k, nil
		}
	}
	return StatKindUnspecified, apperrors.Detail(ErrInvalidStatKind, map[string]string{"stat_kind": value})
}
