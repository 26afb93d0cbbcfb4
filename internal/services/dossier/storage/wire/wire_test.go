package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/id"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/naming"
)

func smallDossier(t *testing.T) *dossier.Dossier {
	t.Helper()
	d, err := dossier.New("Afrika Korps", dossier.WithIDGenerator(id.Sequence("n")), dossier.WithRootID("root"))
	if err != nil {
		t.Fatalf("new dossier: %v", err)
	}
	div, err := d.Tree().Insert(d.Root(), hierarchy.NodeSpec{Kind: hierarchy.KindFormation, Name: "21st Panzer"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	unit, err := d.Tree().Insert(div, hierarchy.NodeSpec{
		Kind:        hierarchy.KindUnit,
		Name:        "Flak 88",
		UnitType:    hierarchy.UnitTypeAntiAircraft,
		Nationality: hierarchy.NationalityGermany,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	scenario, err := d.AddScenario("Gazala", dossier.OutcomeMinorVictory)
	if err != nil {
		t.Fatalf("add scenario: %v", err)
	}
	if err := d.SetStats(unit, scenario, hierarchy.Stats{Kills: 11, Experience: 140}); err != nil {
		t.Fatalf("set stats: %v", err)
	}
	return d
}

func encode(t *testing.T, d *dossier.Dossier) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := (Codec{}).Encode(&buf, d); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	d := smallDossier(t)
	data := encode(t, d)
	if !bytes.HasPrefix(data, []byte("PZDS\x01")) {
		t.Fatalf("expected magic and version header, got %q", data[:5])
	}
	loaded, err := (Codec{}).Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(d.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripAtStatLimit(t *testing.T) {
	d := smallDossier(t)
	unit := d.Snapshot().Root.Subordinates[0].Subordinates[0].ID
	scenario := d.Scenarios()[0].ID
	limit := hierarchy.Stats{Kills: hierarchy.MaxStatValue, Losses: hierarchy.MaxStatValue, Experience: hierarchy.MaxStatValue}
	if err := d.SetStats(unit, scenario, limit); err != nil {
		t.Fatalf("set stats: %v", err)
	}
	loaded, err := (Codec{}).Decode(bytes.NewReader(encode(t, d)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(d.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	over := limit
	over.Experience++
	if err := d.SetStats(unit, scenario, over); !errors.Is(err, hierarchy.ErrStatOutOfRange) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	d := smallDossier(t)
	data := encode(t, d)
	data = protowire.AppendTag(data, 99, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, 42)
	data = protowire.AppendTag(data, 100, protowire.BytesType)
	data = protowire.AppendString(data, "future")

	loaded, err := (Codec{}).Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(d.Snapshot(), loaded.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejects(t *testing.T) {
	valid := encode(t, smallDossier(t))
	header := append([]byte("PZDS"), 1)

	rootOnly := func(node []byte) []byte {
		b := append([]byte(nil), header...)
		b = protowire.AppendTag(b, dossierRoot, protowire.BytesType)
		return protowire.AppendBytes(b, node)
	}
	formation := func(identifier, name string) []byte {
		var b []byte
		b = appendString(b, nodeID, identifier)
		b = appendInt(b, nodeKind, int(hierarchy.KindFormation))
		return appendString(b, nodeName, name)
	}

	negative := formation("root", "Army")
	var unit []byte
	unit = appendString(unit, nodeID, "u")
	unit = appendInt(unit, nodeKind, int(hierarchy.KindUnit))
	unit = appendString(unit, nodeName, "Tank")
	unit = appendInt(unit, nodeUnitType, int(hierarchy.UnitTypeTank))
	unit = appendInt(unit, nodeNationality, int(hierarchy.NationalityGermany))
	var rec []byte
	rec = appendString(rec, recordScenario, "s")
	rec = protowire.AppendTag(rec, recordKills, protowire.VarintType)
	rec = protowire.AppendVarint(rec, uint64(1<<63))
	unit = protowire.AppendTag(unit, nodeRecord, protowire.BytesType)
	unit = protowire.AppendBytes(unit, rec)
	negative = protowire.AppendTag(negative, nodeSubordinate, protowire.BytesType)
	negative = protowire.AppendBytes(negative, unit)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "no magic", data: []byte("YAML"), want: ErrMalformed},
		{name: "future version", data: append([]byte("PZDS"), 9), want: ErrUnsupportedVersion},
		{name: "missing root", data: header, want: ErrMalformed},
		{name: "truncated", data: valid[:len(valid)-3], want: ErrMalformed},
		{name: "out of range value", data: rootOnly(negative), want: ErrMalformed},
		{name: "kindless root", data: rootOnly(nil), want: hierarchy.ErrNotFormation},
		{name: "bad root name", data: rootOnly(formation("root", " Army")), want: naming.ErrInvalidName},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (Codec{}).Decode(bytes.NewReader(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !apperrors.IsDeserialization(err) {
				t.Fatalf("expected deserialization category, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsDeepNesting(t *testing.T) {
	node := []byte(nil)
	for i := 0; i < maxDepth+2; i++ {
		var parent []byte
		parent = appendString(parent, nodeID, "f")
		parent = protowire.AppendTag(parent, nodeSubordinate, protowire.BytesType)
		parent = protowire.AppendBytes(parent, node)
		node = parent
	}
	data := append([]byte("PZDS"), 1)
	data = protowire.AppendTag(data, dossierRoot, protowire.BytesType)
	data = protowire.AppendBytes(data, node)
	if _, err := (Codec{}).Decode(bytes.NewReader(data)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected malformed, got %v", err)
	}
}
