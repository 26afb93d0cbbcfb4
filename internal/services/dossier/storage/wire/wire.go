// Package wire encodes dossiers in a compact binary form built from
// protobuf wire-format fields behind a magic and version header.
package wire

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

// Version is the format version written after the magic bytes.
const Version = 1

var magic = []byte("PZDS")

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 512

var (
	// ErrMalformed indicates input that does not parse as a dossier.
	ErrMalformed = apperrors.New(apperrors.CodeDecodeMalformed, "malformed binary dossier")
	// ErrUnsupportedVersion indicates a format version this codec cannot read.
	ErrUnsupportedVersion = apperrors.New(apperrors.CodeDecodeUnsupported, "unsupported binary dossier version")
)

// Field numbers.
const (
	dossierRoot     protowire.Number = 1
	dossierScenario protowire.Number = 2

	scenarioID      protowire.Number = 1
	scenarioName    protowire.Number = 2
	scenarioOutcome protowire.Number = 3

	nodeID          protowire.Number = 1
	nodeKind        protowire.Number = 2
	nodeName        protowire.Number = 3
	nodeUnitType    protowire.Number = 4
	nodeNationality protowire.Number = 5
	nodeRecord      protowire.Number = 6
	nodeSubordinate protowire.Number = 7

	recordScenario   protowire.Number = 1
	recordKills      protowire.Number = 2
	recordLosses     protowire.Number = 3
	recordExperience protowire.Number = 4
)

// Codec reads and writes binary dossiers.
type Codec struct{}

// Name returns the format name.
func (Codec) Name() string { return "wire" }

// Encode writes d in canonical order.
func (Codec) Encode(w io.Writer, d *dossier.Dossier) error {
	snap := d.Snapshot()
	b := append([]byte(nil), magic...)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, dossierRoot, protowire.BytesType)
	b = protowire.AppendBytes(b, appendNode(nil, snap.Root))
	for _, s := range snap.Scenarios {
		var msg []byte
		msg = appendString(msg, scenarioID, string(s.ID))
		msg = appendString(msg, scenarioName, s.Name)
		msg = appendInt(msg, scenarioOutcome, int(s.Outcome))
		b = protowire.AppendTag(b, dossierScenario, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write binary dossier: %w", err)
	}
	return nil
}

func appendNode(b []byte, n dossier.NodeSnapshot) []byte {
	b = appendString(b, nodeID, string(n.ID))
	b = appendInt(b, nodeKind, int(n.Kind))
	b = appendString(b, nodeName, n.Name)
	if n.Kind == hierarchy.KindUnit {
		b = appendInt(b, nodeUnitType, int(n.UnitType))
		b = appendInt(b, nodeNationality, int(n.Nationality))
	}
	for _, rec := range n.Records {
		var msg []byte
		msg = appendString(msg, recordScenario, string(rec.Scenario))
		msg = appendInt(msg, recordKills, rec.Kills)
		msg = appendInt(msg, recordLosses, rec.Losses)
		msg = appendInt(msg, recordExperience, rec.Experience)
		b = protowire.AppendTag(b, nodeRecord, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	for _, child := range n.Subordinates {
		b = protowire.AppendTag(b, nodeSubordinate, protowire.BytesType)
		b = protowire.AppendBytes(b, appendNode(nil, child))
	}
	return b
}

func appendString(b []byte, num protowire.Number, value string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, value)
}

func appendInt(b []byte, num protowire.Number, value int) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(value))
}

// Decode reads a binary dossier. Unknown fields are skipped.
func (Codec) Decode(r io.Reader) (*dossier.Dossier, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeReadFailed, "read binary dossier", err)
	}
	if !bytes.HasPrefix(data, magic) {
		return nil, ErrMalformed
	}
	data = data[len(magic):]
	version, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return nil, malformed(protowire.ParseError(n))
	}
	if version != Version {
		return nil, apperrors.Detail(ErrUnsupportedVersion, map[string]string{"version": fmt.Sprint(version)})
	}
	data = data[n:]

	var snap dossier.Snapshot
	hasRoot := false
	err = walk(data, func(num protowire.Number, typ protowire.Type, value []byte, raw uint64) error {
		switch {
		case num == dossierRoot && typ == protowire.BytesType:
			if hasRoot {
				return fmt.Errorf("duplicate root")
			}
			hasRoot = true
			root, err := decodeNode(value, 0)
			if err != nil {
				return err
			}
			snap.Root = root
		case num == dossierScenario && typ == protowire.BytesType:
			s, err := decodeScenario(value)
			if err != nil {
				return err
			}
			snap.Scenarios = append(snap.Scenarios, s)
		}
		return nil
	})
	if err != nil {
		return nil, malformed(err)
	}
	if !hasRoot {
		return nil, malformed(fmt.Errorf("missing root"))
	}
	d, err := dossier.FromSnapshot(snap)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDecodeInvalid, "binary dossier content is invalid", err)
	}
	return d, nil
}

func decodeScenario(data []byte) (dossier.Scenario, error) {
	var s dossier.Scenario
	err := walk(data, func(num protowire.Number, typ protowire.Type, value []byte, raw uint64) error {
		switch {
		case num == scenarioID && typ == protowire.BytesType:
			s.ID = dossier.ScenarioID(value)
		case num == scenarioName && typ == protowire.BytesType:
			s.Name = string(value)
		case num == scenarioOutcome && typ == protowire.VarintType:
			v, err := toInt(raw)
			if err != nil {
				return err
			}
			s.Outcome = dossier.Outcome(v)
		}
		return nil
	})
	return s, err
}

func decodeNode(data []byte, depth int) (dossier.NodeSnapshot, error) {
	var n dossier.NodeSnapshot
	if depth > maxDepth {
		return n, fmt.Errorf("nesting deeper than %d", maxDepth)
	}
	err := walk(data, func(num protowire.Number, typ protowire.Type, value []byte, raw uint64) error {
		switch {
		case num == nodeID && typ == protowire.BytesType:
			n.ID = hierarchy.NodeID(value)
		case num == nodeName && typ == protowire.BytesType:
			n.Name = string(value)
		case num == nodeKind && typ == protowire.VarintType:
			v, err := toInt(raw)
			if err != nil || v > math.MaxUint8 {
				return fmt.Errorf("node kind %d out of range", raw)
			}
			n.Kind = hierarchy.Kind(v)
		case num == nodeUnitType && typ == protowire.VarintType:
			v, err := toInt(raw)
			if err != nil {
				return err
			}
			n.UnitType = hierarchy.UnitType(v)
		case num == nodeNationality && typ == protowire.VarintType:
			v, err := toInt(raw)
			if err != nil {
				return err
			}
			n.Nationality = hierarchy.Nationality(v)
		case num == nodeRecord && typ == protowire.BytesType:
			rec, err := decodeRecord(value)
			if err != nil {
				return err
			}
			n.Records = append(n.Records, rec)
		case num == nodeSubordinate && typ == protowire.BytesType:
			child, err := decodeNode(value, depth+1)
			if err != nil {
				return err
			}
			n.Subordinates = append(n.Subordinates, child)
		}
		return nil
	})
	return n, err
}

func decodeRecord(data []byte) (hierarchy.StatRecord, error) {
	var rec hierarchy.StatRecord
	err := walk(data, func(num protowire.Number, typ protowire.Type, value []byte, raw uint64) error {
		if num == recordScenario && typ == protowire.BytesType {
			rec.Scenario = hierarchy.ScenarioID(value)
			return nil
		}
		if typ != protowire.VarintType {
			return nil
		}
		v, err := toInt(raw)
		if err != nil {
			return err
		}
		switch num {
		case recordKills:
			rec.Kills = v
		case recordLosses:
			rec.Losses = v
		case recordExperience:
			rec.Experience = v
		}
		return nil
	})
	return rec, err
}

// walk calls visit for every field in data. For bytes fields value holds the
// payload; for varint fields raw holds the number.
func walk(data []byte, visit func(num protowire.Number, typ protowire.Type, value []byte, raw uint64) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch typ {
		case protowire.BytesType:
			value, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			if err := visit(num, typ, value, 0); err != nil {
				return err
			}
			data = data[m:]
		case protowire.VarintType:
			raw, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			if err := visit(num, typ, nil, raw); err != nil {
				return err
			}
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return protowire.ParseError(m)
			}
			data = data[m:]
		}
	}
	return nil
}

// toInt accepts varints up to hierarchy.MaxStatValue. Negative statistics
// encode as huge unsigned values and are rejected here.
func toInt(raw uint64) (int, error) {
	if raw > hierarchy.MaxStatValue {
		return 0, fmt.Errorf("value %d out of range", raw)
	}
	return int(raw), nil
}

func malformed(err error) error {
	return apperrors.Wrap(ErrMalformed.Code, ErrMalformed.Message, err)
}
