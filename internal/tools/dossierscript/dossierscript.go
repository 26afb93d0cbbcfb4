// Package dossierscript builds dossiers from Lua scripts.
//
// A script creates a dossier with Dossier.new(name), fills it through the
// methods below, and returns it:
//
//	local d = Dossier.new("Afrika Korps")
//	local div = d:formation(d:root(), "15th Panzer")
//	local tank = d:unit(div, "Panzer III", "TANK", "GERMANY")
//	local gazala = d:scenario("Gazala", "MAJOR_VICTORY")
//	d:stats(tank, gazala, 6, 1, 120)
//	return d
//
// Node and scenario handles are their identifiers, passed around as strings.
package dossierscript

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

const dossierTypeName = "dossier"

// ErrScript indicates a script that failed to load, raised an error, or did
// not return a dossier.
var ErrScript = apperrors.New(apperrors.CodeDecodeInvalid, "dossier script failed")

// runner carries the options for one script run and the last domain error a
// binding raised.
type runner struct {
	opts   []dossier.Option
	domain error
}

// LoadFile runs the script at path and returns the dossier it builds.
func LoadFile(path string, opts ...dossier.Option) (*dossier.Dossier, error) {
	r := &runner{opts: opts}
	state := r.newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, apperrors.Wrap(ErrScript.Code, "load "+filepath.Base(path), err)
	}
	return r.run(state)
}

// LoadString runs source under chunk name name.
func LoadString(name, source string, opts ...dossier.Option) (*dossier.Dossier, error) {
	r := &runner{opts: opts}
	state := r.newState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, apperrors.Wrap(ErrScript.Code, "load "+name, err)
	}
	return r.run(state)
}

func (r *runner) newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)

	lua.NewMetaTable(state, dossierTypeName)
	state.NewTable()
	lua.SetFunctions(state, r.methods(), 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: r.newDossier}}, 0)
	state.SetGlobal("Dossier")
	return state
}

func (r *runner) run(state *lua.State) (*dossier.Dossier, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		if r.endedBy(err) {
			return nil, apperrors.Wrap(ErrScript.Code, err.Error(), r.domain)
		}
		return nil, apperrors.Wrap(ErrScript.Code, ErrScript.Message, err)
	}
	defer state.Pop(1)
	if state.TypeOf(-1) != lua.TypeUserData {
		return nil, apperrors.Detail(ErrScript, map[string]string{"reason": "script must return a Dossier"})
	}
	d, ok := state.ToUserData(-1).(*dossier.Dossier)
	if !ok || d == nil {
		return nil, apperrors.Detail(ErrScript, map[string]string{"reason": "script returned an invalid Dossier"})
	}
	if err := d.Validate(); err != nil {
		return nil, apperrors.Wrap(ErrScript.Code, ErrScript.Message, err)
	}
	return d, nil
}

func (r *runner) methods() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "root", Function: r.root},
		{Name: "formation", Function: r.formation},
		{Name: "unit", Function: r.unit},
		{Name: "scenario", Function: r.scenario},
		{Name: "stats", Function: r.stats},
		{Name: "outcome", Function: r.outcome},
		{Name: "move", Function: r.move},
	}
}

func (r *runner) newDossier(state *lua.State) int {
	name := lua.CheckString(state, 1)
	d, err := dossier.New(name, r.opts...)
	r.check(state, err)
	state.PushUserData(d)
	lua.SetMetaTableNamed(state, dossierTypeName)
	return 1
}

func (r *runner) root(state *lua.State) int {
	d := checkDossier(state)
	state.PushString(string(d.Root()))
	return 1
}

func (r *runner) formation(state *lua.State) int {
	d := checkDossier(state)
	parent := hierarchy.NodeID(lua.CheckString(state, 2))
	name := lua.CheckString(state, 3)
	nodeID, err := d.Tree().Insert(parent, hierarchy.NodeSpec{Kind: hierarchy.KindFormation, Name: name})
	r.check(state, err)
	state.PushString(string(nodeID))
	return 1
}

func (r *runner) unit(state *lua.State) int {
	d := checkDossier(state)
	parent := hierarchy.NodeID(lua.CheckString(state, 2))
	name := lua.CheckString(state, 3)
	unitType, err := hierarchy.UnitTypeFromLabel(lua.CheckString(state, 4))
	r.check(state, err)
	nationality, err := hierarchy.NationalityFromLabel(lua.CheckString(state, 5))
	r.check(state, err)
	nodeID, err := d.Tree().Insert(parent, hierarchy.NodeSpec{
		Kind:        hierarchy.KindUnit,
		Name:        name,
		UnitType:    unitType,
		Nationality: nationality,
	})
	r.check(state, err)
	state.PushString(string(nodeID))
	return 1
}

func (r *runner) scenario(state *lua.State) int {
	d := checkDossier(state)
	name := lua.CheckString(state, 2)
	outcome, err := dossier.OutcomeFromLabel(lua.OptString(state, 3, dossier.OutcomePending.String()))
	r.check(state, err)
	scenarioID, err := d.AddScenario(name, outcome)
	r.check(state, err)
	state.PushString(string(scenarioID))
	return 1
}

func (r *runner) outcome(state *lua.State) int {
	d := checkDossier(state)
	scenarioID := dossier.ScenarioID(lua.CheckString(state, 2))
	outcome, err := dossier.OutcomeFromLabel(lua.CheckString(state, 3))
	r.check(state, err)
	r.check(state, d.SetOutcome(scenarioID, outcome))
	return 0
}

func (r *runner) stats(state *lua.State) int {
	d := checkDossier(state)
	unit := hierarchy.NodeID(lua.CheckString(state, 2))
	scenarioID := dossier.ScenarioID(lua.CheckString(state, 3))
	stats := hierarchy.Stats{
		Kills:      lua.CheckInteger(state, 4),
		Losses:     lua.OptInteger(state, 5, 0),
		Experience: lua.OptInteger(state, 6, 0),
	}
	r.check(state, d.SetStats(unit, scenarioID, stats))
	return 0
}

func (r *runner) move(state *lua.State) int {
	d := checkDossier(state)
	node := hierarchy.NodeID(lua.CheckString(state, 2))
	parent := hierarchy.NodeID(lua.CheckString(state, 3))
	r.check(state, d.Tree().AddSubordinate(parent, node))
	return 0
}

// check raises err as a Lua error, remembering it when it is a domain error.
func (r *runner) check(state *lua.State, err error) {
	if err == nil {
		return
	}
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		r.domain = err
	} else {
		r.domain = nil
	}
	lua.Errorf(state, "%s", strings.TrimSpace(err.Error()))
}

// endedBy reports whether the error that stopped the script is the last
// domain error a binding raised. A script may catch a binding error with
// pcall and fail later for an unrelated reason.
func (r *runner) endedBy(err error) bool {
	if r.domain == nil {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(err.Error()), strings.TrimSpace(r.domain.Error()))
}

func checkDossier(state *lua.State) *dossier.Dossier {
	ud := lua.CheckUserData(state, 1, dossierTypeName)
	if d, ok := ud.(*dossier.Dossier); ok && d != nil {
		return d
	}
	lua.ArgumentError(state, 1, "dossier expected")
	return nil
}
