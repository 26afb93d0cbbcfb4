package hierarchy

import "math"

// NodeID is the stable surrogate identity of a node. It survives renames,
// moves, and save/load round trips.
type NodeID string

// ScenarioID identifies the scenario a statistics record belongs to.
type ScenarioID string

// Kind tags a node as a formation or a unit.
type Kind uint8

const (
	KindUnspecified Kind = iota
	// KindFormation is a composite that owns subordinates.
	KindFormation
	// KindUnit is a leaf combat unit.
	KindUnit
)

// String returns the canonical label of k.
func (k Kind) String() string {
	switch k {
	case KindFormation:
		return "FORMATION"
	case KindUnit:
		return "UNIT"
	default:
		return "UNSPECIFIED"
	}
}

// MaxStatValue is the largest kill, loss, or experience figure a record may
// hold. Every storage format can represent it.
const MaxStatValue = math.MaxInt32

// Stats holds one scenario's performance figures for a unit.
type Stats struct {
	Kills      int
	Losses     int
	Experience int
}

// StatRecord is a unit's statistics for one scenario.
type StatRecord struct {
	Scenario ScenarioID
	Stats
}

// Node is a read-only view of a node. Superior is empty for the root and for
// detached nodes. UnitType and Nationality are only set for units.
type Node struct {
	ID          NodeID
	Kind        Kind
	Name        string
	Superior    NodeID
	UnitType    UnitType
	Nationality Nationality
}

// IsFormation reports whether the node is a composite.
func (n Node) IsFormation() bool { return n.Kind == KindFormation }

// IsUnit reports whether the node is a leaf.
func (n Node) IsUnit() bool { return n.Kind == KindUnit }

// NodeSpec describes a node to insert. An empty ID asks the tree to generate
// one.
type NodeSpec struct {
	ID          NodeID
	Kind        Kind
	Name        string
	UnitType    UnitType
	Nationality Nationality
}

type node struct {
	id           NodeID
	kind         Kind
	name         string
	superior     NodeID
	subordinates []NodeID

	unitType    UnitType
	nationality Nationality
	records     []StatRecord
}

func (n *node) view() Node {
	return Node{
		ID:          n.id,
		Kind:        n.kind,
		Name:        n.name,
		Superior:    n.superior,
		UnitType:    n.unitType,
		Nationality: n.nationality,
	}
}

func (n *node) indexOf(child NodeID) int {
	for i, id := range n.subordinates {
		if id == child {
			return i
		}
	}
	return -1
}

func (n *node) detach(child NodeID) {
	if i := n.indexOf(child); i >= 0 {
		n.subordinates = append(n.subordinates[:i:i], n.subordinates[i+1:]...)
	}
}

func (n *node) recordIndex(scenario ScenarioID) int {
	for i, rec := range n.records {
		if rec.Scenario == scenario {
			return i
		}
	}
	return -1
}
