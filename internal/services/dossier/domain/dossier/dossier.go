package dossier

import (
	"fmt"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/naming"
)

// ScenarioID identifies a scenario within a dossier.
type ScenarioID = hierarchy.ScenarioID

// Scenario is one engagement in the dossier's history.
type Scenario struct {
	ID      ScenarioID
	Name    string
	Outcome Outcome
}

// Dossier is the aggregate root: the order of battle and its scenario history.
type Dossier struct {
	tree      *hierarchy.Tree
	scenarios []Scenario
	newID     id.Generator
}

type options struct {
	newID  id.Generator
	rootID hierarchy.NodeID
}

// Option configures a new Dossier.
type Option func(*options)

// WithIDGenerator overrides the generator for node and scenario identifiers.
func WithIDGenerator(gen id.Generator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithRootID fixes the identifier of the root formation.
func WithRootID(rootID hierarchy.NodeID) Option {
	return func(o *options) {
		o.rootID = rootID
	}
}

func applyOptions(opts []Option) options {
	cfg := options{newID: id.NewID}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New creates a dossier whose root formation is named rootName and whose
// history is empty.
func New(rootName string, opts ...Option) (*Dossier, error) {
	cfg := applyOptions(opts)
	tree, err := hierarchy.NewTree(rootName,
		hierarchy.WithIDGenerator(cfg.newID),
		hierarchy.WithRootID(cfg.rootID),
	)
	if err != nil {
		return nil, err
	}
	return &Dossier{tree: tree, newID: cfg.newID}, nil
}

// Tree returns the order of battle.
func (d *Dossier) Tree() *hierarchy.Tree {
	return d.tree
}

// Root returns the root formation's identifier.
func (d *Dossier) Root() hierarchy.NodeID {
	return d.tree.Root()
}

// Scenarios returns the history in chronological order.
func (d *Dossier) Scenarios() []Scenario {
	out := make([]Scenario, len(d.scenarios))
	copy(out, d.scenarios)
	return out
}

// Scenario returns the scenario named id.
func (d *Dossier) Scenario(id ScenarioID) (Scenario, bool) {
	if i := d.scenarioIndex(id); i >= 0 {
		return d.scenarios[i], true
	}
	return Scenario{}, false
}

func (d *Dossier) scenarioIndex(id ScenarioID) int {
	for i, s := range d.scenarios {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// AddScenario appends a scenario to the history.
func (d *Dossier) AddScenario(name string, outcome Outcome) (ScenarioID, error) {
	return d.appendScenario(Scenario{Name: name, Outcome: outcome})
}

func (d *Dossier) appendScenario(s Scenario) (ScenarioID, error) {
	if err := naming.Validate(s.Name); err != nil {
		return "", err
	}
	if err := validateOutcome(s.Outcome); err != nil {
		return "", err
	}
	if s.ID == "" {
		for {
			raw, err := d.newID()
			if err != nil {
				return "", fmt.Errorf("generate scenario id: %w", err)
			}
			if d.scenarioIndex(ScenarioID(raw)) < 0 {
				s.ID = ScenarioID(raw)
				break
			}
		}
	} else if !id.Valid(string(s.ID)) || d.scenarioIndex(s.ID) >= 0 {
		return "", scenarioError(hierarchy.ErrDuplicateID, s.ID)
	}
	d.scenarios = append(d.scenarios, s)
	return s.ID, nil
}

// RenameScenario changes a scenario's name. An invalid name leaves the old one
// in place.
func (d *Dossier) RenameScenario(id ScenarioID, name string) error {
	i := d.scenarioIndex(id)
	if i < 0 {
		return scenarioError(ErrScenarioNotFound, id)
	}
	if err := naming.Validate(name); err != nil {
		return err
	}
	d.scenarios[i].Name = name
	return nil
}

// SetOutcome records the result of a scenario.
func (d *Dossier) SetOutcome(id ScenarioID, outcome Outcome) error {
	i := d.scenarioIndex(id)
	if i < 0 {
		return scenarioError(ErrScenarioNotFound, id)
	}
	if err := validateOutcome(outcome); err != nil {
		return err
	}
	d.scenarios[i].Outcome = outcome
	return nil
}

// MoveScenario moves a scenario to position index in the history.
func (d *Dossier) MoveScenario(id ScenarioID, index int) error {
	i := d.scenarioIndex(id)
	if i < 0 {
		return scenarioError(ErrScenarioNotFound, id)
	}
	if index < 0 || index >= len(d.scenarios) {
		return scenarioError(ErrInvalidScenarioIndex, id)
	}
	s := d.scenarios[i]
	d.scenarios = append(d.scenarios[:i:i], d.scenarios[i+1:]...)
	d.scenarios = append(d.scenarios[:index:index], append([]Scenario{s}, d.scenarios[index:]...)...)
	return nil
}

// RemoveScenario drops a scenario and every statistics record kept for it.
func (d *Dossier) RemoveScenario(id ScenarioID) error {
	i := d.scenarioIndex(id)
	if i < 0 {
		return scenarioError(ErrScenarioNotFound, id)
	}
	d.scenarios = append(d.scenarios[:i:i], d.scenarios[i+1:]...)
	d.tree.DropScenario(id)
	return nil
}

// SetStats records a unit's statistics for a scenario in the history.
func (d *Dossier) SetStats(unit hierarchy.NodeID, scenario ScenarioID, stats hierarchy.Stats) error {
	if d.scenarioIndex(scenario) < 0 {
		return scenarioError(ErrScenarioNotFound, scenario)
	}
	return d.tree.SetStats(unit, scenario, stats)
}

// ClearStats removes a unit's record for a scenario.
func (d *Dossier) ClearStats(unit hierarchy.NodeID, scenario ScenarioID) error {
	if d.scenarioIndex(scenario) < 0 {
		return scenarioError(ErrScenarioNotFound, scenario)
	}
	_, err := d.tree.ClearStats(unit, scenario)
	return err
}

// Stats returns a unit's recorded statistics for a scenario.
func (d *Dossier) Stats(unit hierarchy.NodeID, scenario ScenarioID) (hierarchy.Stats, bool) {
	return d.tree.Stats(unit, scenario)
}

// Validate checks the tree invariants and the scenario history.
func (d *Dossier) Validate() error {
	if err := d.tree.Validate(); err != nil {
		return err
	}
	seen := make(map[ScenarioID]struct{}, len(d.scenarios))
	for _, s := range d.scenarios {
		if _, dup := seen[s.ID]; dup || !id.Valid(string(s.ID)) {
			return scenarioError(hierarchy.ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}
		if err := naming.Validate(s.Name); err != nil {
			return err
		}
		if err := validateOutcome(s.Outcome); err != nil {
			return err
		}
	}
	return nil
}
