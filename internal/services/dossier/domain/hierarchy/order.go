package hierarchy

import (
	"cmp"
	"slices"
	"strings"
)

// minimumFunc resolves the minimum subordinate of a formation.
type minimumFunc func(NodeID) (NodeID, bool)

// CompareNaive orders a and b canonically, re-deriving every formation's
// minimum subordinate on each call. It is the reference definition of the
// canonical order; Order produces the same results with memoised minimums.
func CompareNaive(t *Tree, a, b NodeID) int {
	var minimum minimumFunc
	minimum = func(id NodeID) (NodeID, bool) {
		return t.minimumSubordinate(id, func(x, y NodeID) int { return t.compare(x, y, minimum) })
	}
	return t.compare(a, b, minimum)
}

// SortNaive sorts ids in place with CompareNaive.
func SortNaive(t *Tree, ids []NodeID) {
	slices.SortStableFunc(ids, func(a, b NodeID) int { return CompareNaive(t, a, b) })
}

// compare applies the ordering rules:
//  1. formations before units;
//  2. formations by their minimum subordinates (a formation with none sorts
//     after one with some), then by name;
//  3. units by unit type rank, then by name.
//
// Names compare ordinally. Unknown identifiers sort last, by identifier.
func (t *Tree) compare(a, b NodeID, minimum minimumFunc) int {
	if a == b {
		return 0
	}
	na, okA := t.nodes[a]
	nb, okB := t.nodes[b]
	switch {
	case !okA && !okB:
		return strings.Compare(string(a), string(b))
	case !okA:
		return 1
	case !okB:
		return -1
	}

	switch {
	case na.kind == KindFormation && nb.kind == KindUnit:
		return -1
	case na.kind == KindUnit && nb.kind == KindFormation:
		return 1
	case na.kind == KindUnit:
		if c := cmp.Compare(na.unitType.Rank(), nb.unitType.Rank()); c != 0 {
			return c
		}
		return strings.Compare(na.name, nb.name)
	}

	minA, hasA := minimum(a)
	minB, hasB := minimum(b)
	switch {
	case hasA && !hasB:
		return -1
	case !hasA && hasB:
		return 1
	case hasA && hasB:
		if c := t.compare(minA, minB, minimum); c != 0 {
			return c
		}
	}
	return strings.Compare(na.name, nb.name)
}

// minimumSubordinate returns the subordinate of id that sorts first. Ties go
// to the earliest inserted subordinate.
func (t *Tree) minimumSubordinate(id NodeID, compare func(a, b NodeID) int) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.kind != KindFormation || len(n.subordinates) == 0 {
		return "", false
	}
	best := n.subordinates[0]
	for _, child := range n.subordinates[1:] {
		if compare(child, best) < 0 {
			best = child
		}
	}
	return best, true
}

// Order is the canonical order over one state of a tree. It computes each
// formation's minimum subordinate once, bottom-up, so sorting costs
// O(n log n) comparisons. An Order describes the tree as it was when built;
// build a new one after mutating the tree.
type Order struct {
	tree     *Tree
	minimum  map[NodeID]NodeID
	computed map[NodeID]bool
}

// NewOrder computes the minimum subordinate of every formation in t.
func NewOrder(t *Tree) *Order {
	o := &Order{
		tree:     t,
		minimum:  make(map[NodeID]NodeID),
		computed: make(map[NodeID]bool),
	}
	for nodeID, n := range t.nodes {
		if n.superior == "" {
			o.settleSubtree(nodeID)
		}
	}
	return o
}

type orderFrame struct {
	id   NodeID
	next int
}

// settleSubtree settles the formations under top in post-order, so every
// formation is settled after all of its subordinate formations.
func (o *Order) settleSubtree(top NodeID) {
	n, ok := o.tree.nodes[top]
	if !ok || n.kind != KindFormation {
		return
	}
	stack := []orderFrame{{id: top}}
	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		current := o.tree.nodes[frame.id]
		if frame.next < len(current.subordinates) {
			child := current.subordinates[frame.next]
			frame.next++
			if c, ok := o.tree.nodes[child]; ok && c.kind == KindFormation && !o.computed[child] {
				stack = append(stack, orderFrame{id: child})
			}
			continue
		}
		settled := frame.id
		stack = stack[:len(stack)-1]
		o.settle(settled)
	}
}

func (o *Order) settle(id NodeID) {
	if o.computed[id] {
		return
	}
	if best, ok := o.tree.minimumSubordinate(id, o.Compare); ok {
		o.minimum[id] = best
	}
	o.computed[id] = true
}

// Minimum returns the subordinate of id that sorts first.
func (o *Order) Minimum(id NodeID) (NodeID, bool) {
	if !o.computed[id] {
		o.settle(id)
	}
	best, ok := o.minimum[id]
	return best, ok
}

// Compare orders a and b canonically.
func (o *Order) Compare(a, b NodeID) int {
	return o.tree.compare(a, b, o.Minimum)
}

// Sort sorts ids in place. Equivalent nodes keep their relative order.
func (o *Order) Sort(ids []NodeID) {
	slices.SortStableFunc(ids, o.Compare)
}

// Subordinates returns the direct subordinates of id in canonical order.
func (o *Order) Subordinates(id NodeID) []NodeID {
	children := o.tree.Subordinates(id)
	o.Sort(children)
	return children
}

// Canonical returns the attached tree in pre-order with each formation's
// subordinates in canonical order. Serializers emit nodes in this order.
func (o *Order) Canonical() []NodeID {
	out := make([]NodeID, 0, len(o.tree.nodes))
	var visit func(NodeID)
	visit = func(id NodeID) {
		out = append(out, id)
		for _, child := range o.Subordinates(id) {
			visit(child)
		}
	}
	if o.tree.Contains(o.tree.root) {
		visit(o.tree.root)
	}
	return out
}
