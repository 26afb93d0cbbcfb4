package hierarchy

import (
	"fmt"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/naming"
)

// Validate checks every structural invariant of the arena: the root exists and
// has no superior, superior and subordinate links agree in both directions,
// no node is its own ancestor, only formations hold subordinates, and all
// names and enumeration values are valid.
func (t *Tree) Validate() error {
	root, ok := t.nodes[t.root]
	if !ok {
		return invariantf(t.root, "root is missing")
	}
	if root.kind != KindFormation {
		return invariantf(t.root, "root is not a formation")
	}
	if root.superior != "" {
		return invariantf(t.root, "root has a superior")
	}

	for nodeID, n := range t.nodes {
		if n.id != nodeID {
			return invariantf(nodeID, "node is filed under the wrong id")
		}
		if !naming.IsValidName(n.name) {
			return invariantf(nodeID, "invalid name %q", n.name)
		}
		switch n.kind {
		case KindUnit:
			if len(n.subordinates) > 0 {
				return invariantf(nodeID, "unit has subordinates")
			}
			if !n.unitType.Valid() {
				return invariantf(nodeID, "invalid unit type %d", int(n.unitType))
			}
			if !n.nationality.Valid() {
				return invariantf(nodeID, "invalid nationality %d", int(n.nationality))
			}
		case KindFormation:
			if len(n.records) > 0 {
				return invariantf(nodeID, "formation carries statistics")
			}
		default:
			return invariantf(nodeID, "unknown kind %d", int(n.kind))
		}

		if n.superior != "" {
			sup, ok := t.nodes[n.superior]
			if !ok {
				return invariantf(nodeID, "superior %s is missing", n.superior)
			}
			if sup.indexOf(nodeID) < 0 {
				return invariantf(nodeID, "superior %s does not list it", n.superior)
			}
		}
		seen := make(map[NodeID]struct{}, len(n.subordinates))
		for _, child := range n.subordinates {
			c, ok := t.nodes[child]
			if !ok {
				return invariantf(nodeID, "subordinate %s is missing", child)
			}
			if c.superior != nodeID {
				return invariantf(nodeID, "subordinate %s names superior %q", child, c.superior)
			}
			if _, dup := seen[child]; dup {
				return invariantf(nodeID, "subordinate %s listed twice", child)
			}
			seen[child] = struct{}{}
		}

		steps := 0
		for cursor := n.superior; cursor != ""; steps++ {
			if cursor == nodeID || steps > len(t.nodes) {
				return invariantf(nodeID, "node is its own ancestor")
			}
			ancestor, ok := t.nodes[cursor]
			if !ok {
				break
			}
			cursor = ancestor.superior
		}
	}
	return nil
}

func invariantf(nodeID NodeID, format string, args ...any) error {
	return apperrors.WithMetadata(ErrInvariant.Code, fmt.Sprintf(format, args...), map[string]string{"node_id": string(nodeID)})
}
