package dossier

import (
	"fmt"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

// Point is one value of a statistic series.
type Point struct {
	Scenario ScenarioID
	Name     string
	Value    int
}

// PerScenarioSeries returns one point per scenario, in history order, holding
// the unit's value of kind for that scenario. A scenario without a record
// contributes zero.
func (d *Dossier) PerScenarioSeries(unit hierarchy.NodeID, kind StatKind) ([]Point, error) {
	return d.series(unit, kind)
}

// ProgressionSeries returns the same values as PerScenarioSeries in
// chronological order, for display as a running sequence (see Cumulative).
func (d *Dossier) ProgressionSeries(unit hierarchy.NodeID, kind StatKind) ([]Point, error) {
	return d.series(unit, kind)
}

func (d *Dossier) series(unit hierarchy.NodeID, kind StatKind) ([]Point, error) {
	if !kind.Valid() {
		return nil, ErrInvalidStatKind
	}
	n, ok := d.tree.Node(unit)
	if !ok {
		return nil, fmt.Errorf("series for %s: %w", unit, hierarchy.ErrNodeNotFound)
	}
	if !n.IsUnit() {
		return nil, fmt.Errorf("series for %s: %w", unit, hierarchy.ErrNotUnit)
	}
	points := make([]Point, 0, len(d.scenarios))
	for _, s := range d.scenarios {
		stats, _ := d.tree.Stats(unit, s.ID)
		points = append(points, Point{Scenario: s.ID, Name: s.Name, Value: pick(stats, kind)})
	}
	return points, nil
}

func pick(stats hierarchy.Stats, kind StatKind) int {
	switch kind {
	case StatKindKills:
		return stats.Kills
	case StatKindLosses:
		return stats.Losses
	case StatKindExperience:
		return stats.Experience
	default:
		return 0
	}
}

// Cumulative returns running totals of points.
func Cumulative(points []Point) []Point {
	out := make([]Point, len(points))
	total := 0
	for i, p := range points {
		total += p.Value
		out[i] = Point{Scenario: p.Scenario, Name: p.Name, Value: total}
	}
	return out
}

// Totals sums a unit's statistics over the scenarios in the history.
func (d *Dossier) Totals(unit hierarchy.NodeID) (hierarchy.Stats, error) {
	var total hierarchy.Stats
	for _, kind := range []StatKind{StatKindKills, StatKindLosses, StatKindExperience} {
		points, err := d.series(unit, kind)
		if err != nil {
			return hierarchy.Stats{}, err
		}
		sum := 0
		for _, p := range points {
			sum += p.Value
		}
		switch kind {
		case StatKindKills:
			total.Kills = sum
		case StatKindLosses:
			total.Losses = sum
		case StatKindExperience:
			total.Experience = sum
		}
	}
	return total, nil
}

// OutcomeSummary counts the scenarios in the history by outcome.
func (d *Dossier) OutcomeSummary() map[Outcome]int {
	out := make(map[Outcome]int, len(Outcomes()))
	for _, s := range d.scenarios {
		out[s.Outcome]++
	}
	return out
}
