package decoration

import (
	"fmt"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

// Session decorates one dossier.
type Session struct {
	dossier    *dossier.Dossier
	decorators map[hierarchy.NodeID]*Decorator
	selected   *Decorator
	order      *hierarchy.Order
	cancel     func()
	closed     bool
}

// NewSession starts decorating d.
func NewSession(d *dossier.Dossier) *Session {
	s := &Session{
		dossier:    d,
		decorators: make(map[hierarchy.NodeID]*Decorator),
	}
	s.cancel = d.Tree().Observe(s.treeChanged)
	return s
}

// Dossier returns the decorated dossier.
func (s *Session) Dossier() *dossier.Dossier {
	return s.dossier
}

// Decorate returns the decorator for id, creating it on first use. Repeated
// calls return the same decorator.
func (s *Session) Decorate(id hierarchy.NodeID) (*Decorator, error) {
	if dec, ok := s.decorators[id]; ok {
		return dec, nil
	}
	if s.closed {
		return nil, staleError(id)
	}
	if !s.dossier.Tree().Contains(id) {
		return nil, fmt.Errorf("decorate %s: %w", id, hierarchy.ErrNodeNotFound)
	}
	return s.wrap(id), nil
}

// Root returns the decorator of the root formation. Like Decorate, a closed
// session only hands out decorators it created before closing.
func (s *Session) Root() (*Decorator, error) {
	return s.Decorate(s.dossier.Root())
}

func (s *Session) wrap(id hierarchy.NodeID) *Decorator {
	dec, ok := s.decorators[id]
	if !ok {
		dec = &Decorator{session: s, id: id}
		s.decorators[id] = dec
	}
	return dec
}

// Selected returns the selected decorator, if any.
func (s *Session) Selected() (*Decorator, bool) {
	return s.selected, s.selected != nil
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	return s.closed
}

// MoveUnit places src under dst in one step. On success Changed fires once
// on src, on every ancestor of its new position, and on its old superior and
// that superior's ancestors. On failure nothing changes and nothing fires.
func (s *Session) MoveUnit(src, dst *Decorator) error {
	if err := s.owns(src); err != nil {
		return err
	}
	if err := s.owns(dst); err != nil {
		return err
	}
	return s.dossier.Tree().AddSubordinate(dst.id, src.id)
}

// Close detaches the session from its dossier. Decorators keep reading the
// dossier but refuse mutations and stop receiving notifications.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.order = nil
}

func (s *Session) owns(dec *Decorator) error {
	if dec == nil {
		return staleError("")
	}
	if s.closed || dec.session != s {
		return staleError(dec.id)
	}
	return nil
}

func (s *Session) canonical() *hierarchy.Order {
	if s.closed {
		return hierarchy.NewOrder(s.dossier.Tree())
	}
	if s.order == nil {
		s.order = hierarchy.NewOrder(s.dossier.Tree())
	}
	return s.order
}

func (s *Session) treeChanged(changed []hierarchy.NodeID) {
	s.order = nil
	for _, id := range changed {
		if dec, ok := s.decorators[id]; ok {
			dec.fire()
		}
	}
}

func (s *Session) selectDecorator(dec *Decorator, selected bool) {
	switch {
	case selected && s.selected == dec:
		return
	case selected:
		previous := s.selected
		s.selected = dec
		dec.selected = true
		if previous != nil {
			previous.selected = false
			previous.fire()
		}
		dec.fire()
	case s.selected == dec:
		s.selected = nil
		dec.selected = false
		dec.fire()
	}
}
