package dossier

import (
	"fmt"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

// Snapshot is a plain copy of a dossier in canonical order.
type Snapshot struct {
	Root      NodeSnapshot
	Scenarios []Scenario
}

// NodeSnapshot is one node of a Snapshot. Unit fields are zero for
// formations; Subordinates is empty for units.
type NodeSnapshot struct {
	ID           hierarchy.NodeID
	Kind         hierarchy.Kind
	Name         string
	UnitType     hierarchy.UnitType
	Nationality  hierarchy.Nationality
	Records      []hierarchy.StatRecord
	Subordinates []NodeSnapshot
}

// Snapshot copies the attached tree and the history. Subordinates follow the
// canonical order; records follow the history order. Records for scenarios no
// longer in the history are not part of the dossier and are left out.
func (d *Dossier) Snapshot() Snapshot {
	order := hierarchy.NewOrder(d.tree)
	var build func(hierarchy.NodeID) NodeSnapshot
	build = func(nodeID hierarchy.NodeID) NodeSnapshot {
		n, _ := d.tree.Node(nodeID)
		snap := NodeSnapshot{ID: n.ID, Kind: n.Kind, Name: n.Name}
		if n.IsUnit() {
			snap.UnitType = n.UnitType
			snap.Nationality = n.Nationality
			for _, s := range d.scenarios {
				if stats, ok := d.tree.Stats(nodeID, s.ID); ok {
					snap.Records = append(snap.Records, hierarchy.StatRecord{Scenario: s.ID, Stats: stats})
				}
			}
			return snap
		}
		for _, child := range order.Subordinates(nodeID) {
			snap.Subordinates = append(snap.Subordinates, build(child))
		}
		return snap
	}
	return Snapshot{
		Root:      build(d.tree.Root()),
		Scenarios: d.Scenarios(),
	}
}

// FromSnapshot rebuilds a dossier, keeping every identifier. It rejects
// snapshots that break any naming, enumeration, or structural rule.
func FromSnapshot(s Snapshot, opts ...Option) (*Dossier, error) {
	if s.Root.Kind != hierarchy.KindFormation {
		return nil, fmt.Errorf("root %s: %w", s.Root.ID, hierarchy.ErrNotFormation)
	}
	if len(s.Root.Records) > 0 {
		return nil, fmt.Errorf("root %s: %w", s.Root.ID, hierarchy.ErrNotUnit)
	}
	opts = append(opts, WithRootID(s.Root.ID))
	d, err := New(s.Root.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	for _, scenario := range s.Scenarios {
		if _, err := d.appendScenario(scenario); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
	}
	for _, child := range s.Root.Subordinates {
		if err := d.restore(d.Root(), child); err != nil {
			return nil, err
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dossier) restore(parent hierarchy.NodeID, snap NodeSnapshot) error {
	spec := hierarchy.NodeSpec{ID: snap.ID, Kind: snap.Kind, Name: snap.Name}
	if snap.Kind == hierarchy.KindUnit {
		if len(snap.Subordinates) > 0 {
			return fmt.Errorf("unit %s: %w", snap.ID, hierarchy.ErrNotFormation)
		}
		spec.UnitType = snap.UnitType
		spec.Nationality = snap.Nationality
	} else if len(snap.Records) > 0 {
		return fmt.Errorf("formation %s: %w", snap.ID, hierarchy.ErrNotUnit)
	}
	nodeID, err := d.tree.Insert(parent, spec)
	if err != nil {
		return fmt.Errorf("node %s: %w", snap.ID, err)
	}
	for _, rec := range snap.Records {
		if err := d.SetStats(nodeID, rec.Scenario, rec.Stats); err != nil {
			return fmt.Errorf("node %s: %w", snap.ID, err)
		}
	}
	for _, child := range snap.Subordinates {
		if err := d.restore(nodeID, child); err != nil {
			return err
		}
	}
	return nil
}
