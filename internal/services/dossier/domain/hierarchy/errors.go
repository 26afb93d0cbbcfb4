package hierarchy

import apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"

var (
	// ErrNodeNotFound indicates an identifier that is not part of the tree.
	ErrNodeNotFound = apperrors.New(apperrors.CodeNodeNotFound, "node not found")
	// ErrNotSubordinate indicates a node that is not a direct subordinate of the named superior.
	ErrNotSubordinate = apperrors.New(apperrors.CodeNotSubordinate, "node is not a direct subordinate")
	// ErrCycle indicates a reparent that would make a node its own ancestor.
	ErrCycle = apperrors.New(apperrors.CodeHierarchyCycle, "node cannot be placed under itself or its own subordinates")
	// ErrNotFormation indicates an attempt to give subordinates to a unit.
	ErrNotFormation = apperrors.New(apperrors.CodeHierarchyNotFormation, "only formations can hold subordinates")
	// ErrRootImmutable indicates an attempt to place the root under another node.
	ErrRootImmutable = apperrors.New(apperrors.CodeHierarchyRootImmutable, "the root formation cannot have a superior")
	// ErrDuplicateID indicates a restored node whose identifier is already taken.
	ErrDuplicateID = apperrors.New(apperrors.CodeHierarchyDuplicateID, "node id already exists")
	// ErrInvariant indicates a tree that fails structural validation.
	ErrInvariant = apperrors.New(apperrors.CodeHierarchyInvariant, "hierarchy invariant broken")
	// ErrNotUnit indicates a unit-only operation addressed to a formation.
	ErrNotUnit = apperrors.New(apperrors.CodeHierarchyNotUnit, "operation requires a unit")
	// ErrNegativeStat indicates a negative kill, loss, or experience value.
	ErrNegativeStat = apperrors.New(apperrors.CodeStatValueNegative, "statistic values cannot be negative")
	// ErrStatOutOfRange indicates a statistic above MaxStatValue.
	ErrStatOutOfRange = apperrors.New(apperrors.CodeStatValueOutOfRange, "statistic value is too large")
)

func nodeError(sentinel *apperrors.Error, id NodeID) error {
	return apperrors.Detail(sentinel, map[string]string{"node_id": string(id)})
}

func pairError(sentinel *apperrors.Error, parent, child NodeID) error {
	return apperrors.Detail(sentinel, map[string]string{
		"parent_id": string(parent),
		"child_id":  string(child),
	})
}
