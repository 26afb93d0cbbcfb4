package sqlite

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

func openTempStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "archive.db"), opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func campaign(t *testing.T) *dossier.Dossier {
	t.Helper()
	d, err := dossier.New("Heeresgruppe Sued")
	if err != nil {
		t.Fatalf("new dossier: %v", err)
	}
	tree := d.Tree()
	insert := func(parent hierarchy.NodeID, spec hierarchy.NodeSpec) hierarchy.NodeID {
		nodeID, err := tree.Insert(parent, spec)
		if err != nil {
			t.Fatalf("insert %q: %v", spec.Name, err)
		}
		return nodeID
	}
	army := insert(d.Root(), hierarchy.NodeSpec{Kind: hierarchy.KindFormation, Name: "6th Army"})
	insert(d.Root(), hierarchy.NodeSpec{Kind: hierarchy.KindFormation, Name: "Empty Reserve"})
	gun := insert(army, hierarchy.NodeSpec{Kind: hierarchy.KindUnit, Name: "sFH 18", UnitType: hierarchy.UnitTypeArtillery, Nationality: hierarchy.NationalityGermany})
	insert(army, hierarchy.NodeSpec{Kind: hierarchy.KindUnit, Name: "Vanatori", UnitType: hierarchy.UnitTypeInfantry, Nationality: hierarchy.NationalityRomania})
	first, err := d.AddScenario("Uman", dossier.OutcomeMajorVictory)
	if err != nil {
		t.Fatalf("add scenario: %v", err)
	}
	second, err := d.AddScenario("Kerch", dossier.OutcomeLoss)
	if err != nil {
		t.Fatalf("add scenario: %v", err)
	}
	if err := d.SetStats(gun, second, hierarchy.Stats{Kills: 2, Losses: 1, Experience: 30}); err != nil {
		t.Fatalf("set stats: %v", err)
	}
	if err := d.SetStats(gun, first, hierarchy.Stats{Kills: 5, Experience: 90}); err != nil {
		t.Fatalf("set stats: %v", err)
	}
	return d
}

// randomDossier grows a dossier of size nodes from a small name pool so tied
// names and unit types are common. Formations that draw no subordinates stay
// empty and roughly half the unit and scenario pairs carry no record.
func randomDossier(t *testing.T, rng *rand.Rand, size int) *dossier.Dossier {
	t.Helper()
	d, err := dossier.New("Root")
	if err != nil {
		t.Fatalf("new dossier: %v", err)
	}
	var scenarios []dossier.ScenarioID
	outcomes := dossier.Outcomes()
	for i, n := 0, rng.IntN(4); i < n; i++ {
		scenarioID, err := d.AddScenario(fmt.Sprintf("Scenario %d", i+1), outcomes[rng.IntN(len(outcomes))])
		if err != nil {
			t.Fatalf("add scenario: %v", err)
		}
		scenarios = append(scenarios, scenarioID)
	}
	formations := []hierarchy.NodeID{d.Root()}
	pool := []string{"Alpha", "Bravo", "Charlie", "Delta"}
	types := hierarchy.UnitTypes()
	nationalities := hierarchy.Nationalities()
	for i := 0; i < size; i++ {
		parent := formations[rng.IntN(len(formations))]
		spec := hierarchy.NodeSpec{Kind: hierarchy.KindFormation, Name: pool[rng.IntN(len(pool))]}
		if rng.IntN(3) != 0 {
			spec.Kind = hierarchy.KindUnit
			spec.UnitType = types[rng.IntN(4)]
			spec.Nationality = nationalities[rng.IntN(len(nationalities))]
		}
		nodeID, err := d.Tree().Insert(parent, spec)
		if err != nil {
			t.Fatalf("insert %q: %v", spec.Name, err)
		}
		if spec.Kind == hierarchy.KindFormation {
			formations = append(formations, nodeID)
			continue
		}
		for _, scenarioID := range scenarios {
			if rng.IntN(2) == 0 {
				continue
			}
			stats := hierarchy.Stats{Kills: rng.IntN(20), Losses: rng.IntN(5), Experience: rng.IntN(500)}
			if err := d.SetStats(nodeID, scenarioID, stats); err != nil {
				t.Fatalf("set stats: %v", err)
			}
		}
	}
	return d
}

func TestSaveLoadRandomDossiers(t *testing.T) {
	store := openTempStore(t)
	rng := rand.New(rand.NewPCG(3, 1941))
	for i := 0; i < 40; i++ {
		d := randomDossier(t, rng, rng.IntN(30))
		archiveID := fmt.Sprintf("random-%d", i%5)
		if err := store.SaveDossier(context.Background(), archiveID, "Random", d); err != nil {
			t.Fatalf("dossier %d: save: %v", i, err)
		}
		loaded, err := store.LoadDossier(context.Background(), archiveID)
		if err != nil {
			t.Fatalf("dossier %d: load: %v", i, err)
		}
		if diff := cmp.Diff(d.Snapshot(), loaded.Snapshot()); diff != "" {
			t.Fatalf("dossier %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); !errors.Is(err, ErrPathRequired) || !apperrors.IsIO(err) {
		t.Fatalf("expected path required io error, got %v", err)
	}
}

func TestOpenFailureIsIO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "archive.db")
	if _, err := Open(context.Background(), path); !apperrors.IsIO(err) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestClosedStoreFailuresAreIO(t *testing.T) {
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	if err := store.SaveDossier(context.Background(), "east", "East", campaign(t)); !apperrors.IsIO(err) {
		t.Fatalf("expected io error on save, got %v", err)
	}
	if _, err := store.LoadDossier(context.Background(), "east"); !apperrors.IsIO(err) {
		t.Fatalf("expected io error on load, got %v", err)
	}
	if _, err := store.ListDossiers(context.Background()); !apperrors.IsIO(err) {
		t.Fatalf("expected io error on list, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTempStore(t)
	d := campaign(t)

	if err := store.SaveDossier(context.Background(), "east-1942", "Summer 1942", d); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadDossier(context.Background(), "east-1942")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(d.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveReplacesPreviousVersion(t *testing.T) {
	store := openTempStore(t)
	d := campaign(t)
	if err := store.SaveDossier(context.Background(), "east", "East", d); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := d.AddScenario("Stalingrad", dossier.OutcomeLoss); err != nil {
		t.Fatalf("add scenario: %v", err)
	}
	if err := d.Tree().Rename(d.Root(), "Army Group B"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := store.SaveDossier(context.Background(), "east", "East", d); err != nil {
		t.Fatalf("save again: %v", err)
	}
	loaded, err := store.LoadDossier(context.Background(), "east")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(d.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Fatalf("replacement mismatch (-want +got):\n%s", diff)
	}
}

func TestListDossiers(t *testing.T) {
	clock := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	store := openTempStore(t, WithClock(func() time.Time { return clock }))

	if err := store.SaveDossier(context.Background(), "b", "Barbarossa", campaign(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	empty, err := dossier.New("Lone HQ")
	if err != nil {
		t.Fatalf("new dossier: %v", err)
	}
	if err := store.SaveDossier(context.Background(), "a", "Case Blue", empty); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := store.ListDossiers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []Entry{
		{ID: "b", Name: "Barbarossa", SavedAt: clock, Nodes: 5, Scenarios: 2},
		{ID: "a", Name: "Case Blue", SavedAt: clock, Nodes: 1, Scenarios: 0},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteDossier(t *testing.T) {
	store := openTempStore(t)
	if err := store.SaveDossier(context.Background(), "east", "East", campaign(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.DeleteDossier(context.Background(), "east"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadDossier(context.Background(), "east"); !errors.Is(err, ErrDossierNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.DeleteDossier(context.Background(), "east"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	// Re-saving under the same id must not collide with leftover rows.
	if err := store.SaveDossier(context.Background(), "east", "East", campaign(t)); err != nil {
		t.Fatalf("save after delete: %v", err)
	}
}

func TestSaveValidatesInput(t *testing.T) {
	store := openTempStore(t)
	d := campaign(t)
	if err := store.SaveDossier(context.Background(), "", "Name", d); !errors.Is(err, ErrInvalidArchiveID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	if err := store.SaveDossier(context.Background(), "ok", "  ", d); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	entries, err := store.ListDossiers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected nothing saved, got %v", entries)
	}
}

func TestLoadRejectsCorruptRows(t *testing.T) {
	store := openTempStore(t)
	if err := store.SaveDossier(context.Background(), "east", "East", campaign(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.sqlDB.Exec(`UPDATE nodes SET unit_type = 'ZEPPELIN' WHERE kind = 'UNIT'`); err != nil {
		t.Fatalf("corrupt rows: %v", err)
	}
	_, err := store.LoadDossier(context.Background(), "east")
	if !errors.Is(err, ErrCorrupt) || !apperrors.IsDeserialization(err) {
		t.Fatalf("expected corrupt archive error, got %v", err)
	}
	if !errors.Is(err, hierarchy.ErrInvalidUnitType) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
}

func TestStoreSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	store := openTempStore(t, WithTracerProvider(tp))

	if err := store.SaveDossier(context.Background(), "east", "East", campaign(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.LoadDossier(context.Background(), "missing"); err == nil {
		t.Fatal("expected missing dossier error")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "archive.save" || spans[1].Name() != "archive.load" {
		t.Fatalf("unexpected span names %q %q", spans[0].Name(), spans[1].Name())
	}
	if spans[1].Status().Code.String() != "Error" {
		t.Fatalf("expected error status, got %v", spans[1].Status())
	}
}
