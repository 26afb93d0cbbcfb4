// Package dossier defines the aggregate root of a force's record: the order of
// battle (a hierarchy.Tree) plus the ordered history of scenarios it fought.
//
// Statistics are stored on units per scenario. The series helpers read them
// back in scenario order, treating a scenario a unit has no record for as
// zero so every series has exactly one point per scenario.
//
// Snapshot and FromSnapshot convert the aggregate to and from a plain nested
// value in canonical order. Every persistence format is built on that value.
package dossier
