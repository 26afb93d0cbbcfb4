package hierarchy

import (
	"slices"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/naming"
)

// NewUnit creates a detached unit.
func (t *Tree) NewUnit(unitType UnitType, nationality Nationality, name string) (NodeID, error) {
	return t.create(NodeSpec{Kind: KindUnit, Name: name, UnitType: unitType, Nationality: nationality})
}

// NewFormation creates a detached formation.
func (t *Tree) NewFormation(name string) (NodeID, error) {
	return t.create(NodeSpec{Kind: KindFormation, Name: name})
}

// Insert creates the node described by spec and attaches it under parent in
// one step. Restoration and scripted builders use it to keep identifiers.
func (t *Tree) Insert(parent NodeID, spec NodeSpec) (NodeID, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return "", nodeError(ErrNodeNotFound, parent)
	}
	if p.kind != KindFormation {
		return "", nodeError(ErrNotFormation, parent)
	}
	child, err := t.build(spec)
	if err != nil {
		return "", err
	}
	t.nodes[child.id] = child
	child.superior = parent
	p.subordinates = append(p.subordinates, child.id)
	t.notify(child.id)
	return child.id, nil
}

func (t *Tree) create(spec NodeSpec) (NodeID, error) {
	n, err := t.build(spec)
	if err != nil {
		return "", err
	}
	t.nodes[n.id] = n
	return n.id, nil
}

// build validates spec and allocates the node without touching the arena.
func (t *Tree) build(spec NodeSpec) (*node, error) {
	if err := naming.Validate(spec.Name); err != nil {
		return nil, err
	}
	n := &node{kind: spec.Kind, name: spec.Name}
	switch spec.Kind {
	case KindUnit:
		if err := validateUnitType(spec.UnitType); err != nil {
			return nil, err
		}
		if err := validateNationality(spec.Nationality); err != nil {
			return nil, err
		}
		n.unitType = spec.UnitType
		n.nationality = spec.Nationality
	case KindFormation:
	default:
		return nil, nodeError(ErrInvariant, spec.ID)
	}
	if spec.ID == "" {
		generated, err := t.generateID()
		if err != nil {
			return nil, err
		}
		n.id = generated
		return n, nil
	}
	if !id.Valid(string(spec.ID)) {
		return nil, nodeError(ErrInvariant, spec.ID)
	}
	if _, taken := t.nodes[spec.ID]; taken {
		return nil, nodeError(ErrDuplicateID, spec.ID)
	}
	n.id = spec.ID
	return n, nil
}

// AddSubordinate places child under parent. If child already has a superior
// it is moved: detached from the old superior and attached to parent as one
// step. Placing a node under itself or one of its own subordinates fails with
// ErrCycle and changes nothing.
func (t *Tree) AddSubordinate(parent, child NodeID) error {
	p, ok := t.nodes[parent]
	if !ok {
		return nodeError(ErrNodeNotFound, parent)
	}
	c, ok := t.nodes[child]
	if !ok {
		return nodeError(ErrNodeNotFound, child)
	}
	if p.kind != KindFormation {
		return pairError(ErrNotFormation, parent, child)
	}
	if child == parent || t.IsAncestor(child, parent) {
		return pairError(ErrCycle, parent, child)
	}
	if child == t.root {
		return pairError(ErrRootImmutable, parent, child)
	}
	if c.superior == parent {
		return nil
	}

	previous := c.superior
	if previous != "" {
		if old, ok := t.nodes[previous]; ok {
			old.detach(child)
		}
	}
	c.superior = parent
	p.subordinates = append(p.subordinates, child)

	t.notify(child, parent, previous)
	return nil
}

// RemoveSubordinate detaches child from parent. The child and its subtree stay
// in the arena, detached.
func (t *Tree) RemoveSubordinate(parent, child NodeID) error {
	p, ok := t.nodes[parent]
	if !ok {
		return nodeError(ErrNodeNotFound, parent)
	}
	c, ok := t.nodes[child]
	if !ok {
		return nodeError(ErrNodeNotFound, child)
	}
	if c.superior != parent || p.indexOf(child) < 0 {
		return pairError(ErrNotSubordinate, parent, child)
	}
	p.detach(child)
	c.superior = ""
	t.notify(child, parent)
	return nil
}

// Rename changes the name of id. An invalid name leaves the old name in place.
func (t *Tree) Rename(id NodeID, name string) error {
	n, ok := t.nodes[id]
	if !ok {
		return nodeError(ErrNodeNotFound, id)
	}
	if err := naming.Validate(name); err != nil {
		return err
	}
	if n.name == name {
		return nil
	}
	n.name = name
	t.notify(id)
	return nil
}

// SetUnitType changes the type of a unit.
func (t *Tree) SetUnitType(id NodeID, unitType UnitType) error {
	n, err := t.unit(id)
	if err != nil {
		return err
	}
	if err := validateUnitType(unitType); err != nil {
		return err
	}
	if n.unitType == unitType {
		return nil
	}
	n.unitType = unitType
	t.notify(id)
	return nil
}

// SetNationality changes the nationality of a unit.
func (t *Tree) SetNationality(id NodeID, nationality Nationality) error {
	n, err := t.unit(id)
	if err != nil {
		return err
	}
	if err := validateNationality(nationality); err != nil {
		return err
	}
	if n.nationality == nationality {
		return nil
	}
	n.nationality = nationality
	t.notify(id)
	return nil
}

// SetStats records a unit's statistics for scenario, replacing any earlier
// record for the same scenario in place.
func (t *Tree) SetStats(id NodeID, scenario ScenarioID, stats Stats) error {
	n, err := t.unit(id)
	if err != nil {
		return err
	}
	if stats.Kills < 0 || stats.Losses < 0 || stats.Experience < 0 {
		return nodeError(ErrNegativeStat, id)
	}
	if stats.Kills > MaxStatValue || stats.Losses > MaxStatValue || stats.Experience > MaxStatValue {
		return nodeError(ErrStatOutOfRange, id)
	}
	if i := n.recordIndex(scenario); i >= 0 {
		if n.records[i].Stats == stats {
			return nil
		}
		n.records[i].Stats = stats
	} else {
		n.records = append(n.records, StatRecord{Scenario: scenario, Stats: stats})
	}
	t.notify(id)
	return nil
}

// ClearStats removes a unit's record for scenario. It reports whether a record
// was removed.
func (t *Tree) ClearStats(id NodeID, scenario ScenarioID) (bool, error) {
	n, err := t.unit(id)
	if err != nil {
		return false, err
	}
	i := n.recordIndex(scenario)
	if i < 0 {
		return false, nil
	}
	n.records = append(n.records[:i:i], n.records[i+1:]...)
	t.notify(id)
	return true, nil
}

// DropScenario removes every record for scenario across the arena and returns
// the units that lost a record.
func (t *Tree) DropScenario(scenario ScenarioID) []NodeID {
	var touched []NodeID
	for nodeID, n := range t.nodes {
		if i := n.recordIndex(scenario); i >= 0 {
			n.records = append(n.records[:i:i], n.records[i+1:]...)
			touched = append(touched, nodeID)
		}
	}
	if len(touched) > 0 {
		slices.Sort(touched)
		t.notify(touched...)
	}
	return touched
}

func (t *Tree) unit(id NodeID) (*node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, nodeError(ErrNodeNotFound, id)
	}
	if n.kind != KindUnit {
		return nil, nodeError(ErrNotUnit, id)
	}
	return n, nil
}
