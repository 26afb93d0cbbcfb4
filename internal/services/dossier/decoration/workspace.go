package decoration

import "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"

// Workspace holds the dossier being edited and its decoration session.
type Workspace struct {
	session *Session
}

// NewWorkspace opens a workspace over d. A nil d starts an empty workspace.
func NewWorkspace(d *dossier.Dossier) *Workspace {
	w := &Workspace{}
	w.ReplaceRoot(d)
	return w
}

// Session returns the current session, or nil when no dossier is open.
func (w *Workspace) Session() *Session {
	return w.session
}

// Dossier returns the open dossier, or nil.
func (w *Workspace) Dossier() *dossier.Dossier {
	if w.session == nil {
		return nil
	}
	return w.session.Dossier()
}

// ReplaceRoot closes the current session, making every decorator it issued
// stale, and opens a new session over d. Passing nil only closes.
func (w *Workspace) ReplaceRoot(d *dossier.Dossier) *Session {
	if w.session != nil {
		w.session.Close()
		w.session = nil
	}
	if d != nil {
		w.session = NewSession(d)
	}
	return w.session
}
