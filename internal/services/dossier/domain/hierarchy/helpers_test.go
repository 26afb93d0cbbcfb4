package hierarchy

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
)

func newTestTree(t *testing.T, rootName string) *Tree {
	t.Helper()
	tree, err := NewTree(rootName, WithIDGenerator(id.Sequence("n")), WithRootID("root"))
	if err != nil {
		t.Fatalf("new tree: %v", err)
	}
	return tree
}

func mustInsertFormation(t *testing.T, tree *Tree, parent NodeID, name string) NodeID {
	t.Helper()
	nodeID, err := tree.Insert(parent, NodeSpec{Kind: KindFormation, Name: name})
	if err != nil {
		t.Fatalf("insert formation %q: %v", name, err)
	}
	return nodeID
}

func mustInsertUnit(t *testing.T, tree *Tree, parent NodeID, name string, unitType UnitType) NodeID {
	t.Helper()
	nodeID, err := tree.Insert(parent, NodeSpec{
		Kind:        KindUnit,
		Name:        name,
		UnitType:    unitType,
		Nationality: NationalityGermany,
	})
	if err != nil {
		t.Fatalf("insert unit %q: %v", name, err)
	}
	return nodeID
}

// dump renders every node in the arena, links and records included, so two
// dumps are equal exactly when the trees are.
func dump(tree *Tree) string {
	ids := make([]NodeID, 0, len(tree.nodes))
	for nodeID := range tree.nodes {
		ids = append(ids, nodeID)
	}
	slices.Sort(ids)
	var b strings.Builder
	fmt.Fprintf(&b, "root=%s\n", tree.root)
	for _, nodeID := range ids {
		n := tree.nodes[nodeID]
		fmt.Fprintf(&b, "%s kind=%s name=%q sup=%s subs=%v type=%s nat=%s recs=%v\n",
			n.id, n.kind, n.name, n.superior, n.subordinates, n.unitType, n.nationality, n.records)
	}
	return b.String()
}

func names(tree *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, nodeID := range ids {
		n, _ := tree.Node(nodeID)
		out = append(out, n.Name)
	}
	return out
}

// randomTree grows a tree of size nodes with a deliberately small name pool so
// ties in names and unit types are common.
func randomTree(t *testing.T, rng *rand.Rand, size int) *Tree {
	t.Helper()
	tree := newTestTree(t, "Root")
	formations := []NodeID{tree.Root()}
	pool := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	types := UnitTypes()
	for i := 0; i < size; i++ {
		parent := formations[rng.IntN(len(formations))]
		name := pool[rng.IntN(len(pool))]
		if rng.IntN(3) == 0 {
			formations = append(formations, mustInsertFormation(t, tree, parent, name))
			continue
		}
		mustInsertUnit(t, tree, parent, name, types[rng.IntN(4)])
	}
	return tree
}

func allIDs(tree *Tree) []NodeID {
	ids := make([]NodeID, 0, len(tree.nodes))
	for nodeID := range tree.nodes {
		ids = append(ids, nodeID)
	}
	slices.Sort(ids)
	return ids
}
