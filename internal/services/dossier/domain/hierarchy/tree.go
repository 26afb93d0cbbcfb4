package hierarchy

import (
	"fmt"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/naming"
)

// Observer receives the nodes affected by an applied mutation. The slice is
// owned by the callee.
type Observer func(changed []NodeID)

// Tree is the arena owning every node of one order of battle.
type Tree struct {
	nodes map[NodeID]*node
	root  NodeID
	newID id.Generator

	observers    []observerEntry
	nextObserver int
}

type observerEntry struct {
	key int
	fn  Observer
}

// Option configures a Tree.
type Option func(*Tree)

// WithIDGenerator overrides the identifier generator used for new nodes.
func WithIDGenerator(gen id.Generator) Option {
	return func(t *Tree) {
		if gen != nil {
			t.newID = gen
		}
	}
}

// WithRootID fixes the identifier of the root formation.
func WithRootID(rootID NodeID) Option {
	return func(t *Tree) {
		t.root = rootID
	}
}

// NewTree creates a tree holding a single root formation.
func NewTree(rootName string, opts ...Option) (*Tree, error) {
	if err := naming.Validate(rootName); err != nil {
		return nil, err
	}
	t := &Tree{
		nodes: make(map[NodeID]*node),
		newID: id.NewID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	rootID := t.root
	if rootID == "" {
		generated, err := t.generateID()
		if err != nil {
			return nil, err
		}
		rootID = generated
	} else if !id.Valid(string(rootID)) {
		return nil, nodeError(ErrInvariant, rootID)
	}
	t.root = rootID
	t.nodes[rootID] = &node{id: rootID, kind: KindFormation, name: rootName}
	return t, nil
}

func (t *Tree) generateID() (NodeID, error) {
	for {
		raw, err := t.newID()
		if err != nil {
			return "", fmt.Errorf("generate node id: %w", err)
		}
		candidate := NodeID(raw)
		if _, taken := t.nodes[candidate]; !taken {
			return candidate, nil
		}
	}
}

// Root returns the root formation's identifier.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes in the arena, attached or not.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Contains reports whether id names a node in the arena.
func (t *Tree) Contains(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Node returns a view of the node named id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.view(), true
}

// Superior returns the superior of id, or false for the root, detached nodes,
// and unknown identifiers.
func (t *Tree) Superior(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.superior == "" {
		return "", false
	}
	return n.superior, true
}

// Subordinates returns the direct subordinates of id in insertion order.
func (t *Tree) Subordinates(id NodeID) []NodeID {
	n, ok := t.nodes[id]
	if !ok || len(n.subordinates) == 0 {
		return nil
	}
	out := make([]NodeID, len(n.subordinates))
	copy(out, n.subordinates)
	return out
}

// Ancestors returns the superiors of id from the nearest up to the top of its
// subtree.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	n, ok := t.nodes[id]
	for ok && n.superior != "" {
		out = append(out, n.superior)
		n, ok = t.nodes[n.superior]
	}
	return out
}

// IsAncestor reports whether ancestor is a strict ancestor of id.
func (t *Tree) IsAncestor(ancestor, id NodeID) bool {
	n, ok := t.nodes[id]
	for ok && n.superior != "" {
		if n.superior == ancestor {
			return true
		}
		n, ok = t.nodes[n.superior]
	}
	return false
}

// Attached reports whether id is reachable from the root.
func (t *Tree) Attached(id NodeID) bool {
	if id == t.root {
		return t.Contains(id)
	}
	return t.IsAncestor(t.root, id)
}

// Walk visits the attached tree depth first in insertion order, passing each
// node with its depth below the root. Returning false from visit skips the
// node's subordinates.
func (t *Tree) Walk(visit func(n Node, depth int) bool) {
	t.walk(t.root, 0, visit)
}

func (t *Tree) walk(id NodeID, depth int, visit func(Node, int) bool) {
	n, ok := t.nodes[id]
	if !ok {
		return
	}
	if !visit(n.view(), depth) {
		return
	}
	for _, child := range n.subordinates {
		t.walk(child, depth+1, visit)
	}
}

// Records returns a unit's statistics records in insertion order.
func (t *Tree) Records(id NodeID) []StatRecord {
	n, ok := t.nodes[id]
	if !ok || len(n.records) == 0 {
		return nil
	}
	out := make([]StatRecord, len(n.records))
	copy(out, n.records)
	return out
}

// Stats returns the statistics a unit recorded for scenario.
func (t *Tree) Stats(id NodeID, scenario ScenarioID) (Stats, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Stats{}, false
	}
	if i := n.recordIndex(scenario); i >= 0 {
		return n.records[i].Stats, true
	}
	return Stats{}, false
}

// Observe registers fn to receive affected node sets after each applied
// mutation. The returned cancel function unregisters it.
func (t *Tree) Observe(fn Observer) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	t.nextObserver++
	key := t.nextObserver
	t.observers = append(t.observers, observerEntry{key: key, fn: fn})
	return func() {
		for i, entry := range t.observers {
			if entry.key == key {
				t.observers = append(t.observers[:i:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// notify reports the affected set for the given positions: each start node
// and all of its ancestors, in first-seen order, without duplicates.
func (t *Tree) notify(starts ...NodeID) {
	if len(t.observers) == 0 {
		return
	}
	seen := make(map[NodeID]struct{})
	var changed []NodeID
	add := func(id NodeID) {
		if id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		changed = append(changed, id)
	}
	for _, start := range starts {
		add(start)
		for _, ancestor := range t.Ancestors(start) {
			add(ancestor)
		}
	}
	observers := append([]observerEntry(nil), t.observers...)
	for _, entry := range observers {
		out := make([]NodeID, len(changed))
		copy(out, changed)
		entry.fn(out)
	}
}
