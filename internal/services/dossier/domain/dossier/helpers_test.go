package dossier

import (
	"testing"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

func newTestDossier(t *testing.T) *Dossier {
	t.Helper()
	d, err := New("Army Group Centre", WithIDGenerator(id.Sequence("id")), WithRootID("root"))
	if err != nil {
		t.Fatalf("new dossier: %v", err)
	}
	return d
}

func mustFormation(t *testing.T, d *Dossier, parent hierarchy.NodeID, name string) hierarchy.NodeID {
	t.Helper()
	nodeID, err := d.Tree().Insert(parent, hierarchy.NodeSpec{Kind: hierarchy.KindFormation, Name: name})
	if err != nil {
		t.Fatalf("insert formation %q: %v", name, err)
	}
	return nodeID
}

func mustUnit(t *testing.T, d *Dossier, parent hierarchy.NodeID, name string, unitType hierarchy.UnitType) hierarchy.NodeID {
	t.Helper()
	nodeID, err := d.Tree().Insert(parent, hierarchy.NodeSpec{
		Kind:        hierarchy.KindUnit,
		Name:        name,
		UnitType:    unitType,
		Nationality: hierarchy.NationalityGermany,
	})
	if err != nil {
		t.Fatalf("insert unit %q: %v", name, err)
	}
	return nodeID
}

func mustScenario(t *testing.T, d *Dossier, name string, outcome Outcome) ScenarioID {
	t.Helper()
	scenarioID, err := d.AddScenario(name, outcome)
	if err != nil {
		t.Fatalf("add scenario %q: %v", name, err)
	}
	return scenarioID
}

func mustStats(t *testing.T, d *Dossier, unit hierarchy.NodeID, scenario ScenarioID, kills, losses, experience int) {
	t.Helper()
	stats := hierarchy.Stats{Kills: kills, Losses: losses, Experience: experience}
	if err := d.SetStats(unit, scenario, stats); err != nil {
		t.Fatalf("set stats: %v", err)
	}
}

func scenarioNames(scenarios []Scenario) []string {
	out := make([]string, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.Name
	}
	return out
}
