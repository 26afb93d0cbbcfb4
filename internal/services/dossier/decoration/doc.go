// Package decoration wraps dossier nodes in identity-stable decorators that
// carry presentation state (selection) and change notification.
//
// A Session decorates one dossier. Decorators are created on first use and
// cached for the life of the session; every tree mutation, whether issued
// through a decorator or directly on the dossier, reaches the affected
// decorators through the tree's change hook. A Workspace owns the current
// session and swaps it out when a different dossier is loaded.
//
// Sessions are not safe for concurrent use. Callers serialize load, save,
// and close against mutations.
package decoration
