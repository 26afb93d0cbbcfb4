package decoration

import (
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

// Decorator wraps one node of a session's dossier. Read accessors reflect the
// node as it is now; a decorator of a closed session keeps reading the tree it
// was created over.
type Decorator struct {
	session  *Session
	id       hierarchy.NodeID
	selected bool
	handlers []handler
	nextKey  int
}

type handler struct {
	key int
	fn  func()
}

// ID returns the wrapped node's identifier.
func (d *Decorator) ID() hierarchy.NodeID {
	return d.id
}

func (d *Decorator) node() hierarchy.Node {
	n, _ := d.session.dossier.Tree().Node(d.id)
	return n
}

// Kind returns the wrapped node's kind.
func (d *Decorator) Kind() hierarchy.Kind {
	return d.node().Kind
}

// Name returns the wrapped node's name.
func (d *Decorator) Name() string {
	return d.node().Name
}

// UnitType returns the unit type, or UnitTypeUnspecified for formations.
func (d *Decorator) UnitType() hierarchy.UnitType {
	return d.node().UnitType
}

// Nationality returns the nationality, or NationalityUnspecified for
// formations.
func (d *Decorator) Nationality() hierarchy.Nationality {
	return d.node().Nationality
}

// Superior returns the decorator of the node's superior. It reports false for
// the root and for detached nodes.
func (d *Decorator) Superior() (*Decorator, bool) {
	superior, ok := d.session.dossier.Tree().Superior(d.id)
	if !ok {
		return nil, false
	}
	return d.session.wrap(superior), true
}

// Subordinates returns decorators for the node's direct subordinates in
// canonical order.
func (d *Decorator) Subordinates() []*Decorator {
	ids := d.session.canonical().Subordinates(d.id)
	out := make([]*Decorator, len(ids))
	for i, id := range ids {
		out[i] = d.session.wrap(id)
	}
	return out
}

// Stats returns the unit's record for scenario.
func (d *Decorator) Stats(scenario hierarchy.ScenarioID) (hierarchy.Stats, bool) {
	return d.session.dossier.Tree().Stats(d.id, scenario)
}

// IsSelected reports whether this decorator holds the session's selection.
func (d *Decorator) IsSelected() bool {
	return d.selected
}

// SetSelected selects or deselects the decorator. Selecting it clears the
// previous selection; each decorator whose state flips fires Changed once.
func (d *Decorator) SetSelected(selected bool) error {
	if err := d.session.owns(d); err != nil {
		return err
	}
	d.session.selectDecorator(d, selected)
	return nil
}

// Rename renames the wrapped node.
func (d *Decorator) Rename(name string) error {
	if err := d.session.owns(d); err != nil {
		return err
	}
	return d.session.dossier.Tree().Rename(d.id, name)
}

// SetUnitType changes the wrapped unit's type.
func (d *Decorator) SetUnitType(unitType hierarchy.UnitType) error {
	if err := d.session.owns(d); err != nil {
		return err
	}
	return d.session.dossier.Tree().SetUnitType(d.id, unitType)
}

// SetNationality changes the wrapped unit's nationality.
func (d *Decorator) SetNationality(nationality hierarchy.Nationality) error {
	if err := d.session.owns(d); err != nil {
		return err
	}
	return d.session.dossier.Tree().SetNationality(d.id, nationality)
}

// Stale reports whether the decorator's session has been closed.
func (d *Decorator) Stale() bool {
	return d.session.closed
}

// OnChanged registers fn to run whenever the node, or anything beneath it,
// changes. The returned function unregisters it.
func (d *Decorator) OnChanged(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	d.nextKey++
	key := d.nextKey
	d.handlers = append(d.handlers, handler{key: key, fn: fn})
	return func() {
		for i, h := range d.handlers {
			if h.key == key {
				d.handlers = append(d.handlers[:i:i], d.handlers[i+1:]...)
				return
			}
		}
	}
}

func (d *Decorator) fire() {
	handlers := append([]handler(nil), d.handlers...)
	for _, h := range handlers {
		h.fn()
	}
}
