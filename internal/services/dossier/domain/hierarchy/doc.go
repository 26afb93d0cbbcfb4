// Package hierarchy models the order of battle of a force as a composite tree.
//
// # Nodes
//
// Every node is either a formation (a composite that owns subordinates) or a
// unit (a leaf carrying a unit type, a nationality, and per-scenario
// statistics). The kind is an explicit tag matched in the ordering and
// mutation code rather than dispatched through an interface.
//
// # Ownership
//
// A Tree is an arena: it owns every node and links them by NodeID handles.
// A subordinate names its superior by handle only, so reparenting never forms
// an ownership cycle. Nodes created with NewUnit or NewFormation start
// detached; nodes removed from the tree stay in the arena, detached, and can
// be attached again.
//
// # Mutation
//
// AddSubordinate, RemoveSubordinate, Rename, and the statistics setters either
// apply completely or leave the tree untouched. After each applied mutation the
// tree reports the set of affected nodes (the node itself and every ancestor of
// each position it occupied) to its observers.
//
// # Ordering
//
// Order implements the canonical order used for display and persistence:
// formations before units, formations by their minimum subordinate and then by
// name, units by type rank and then by name.
package hierarchy
