// Package yamlfile encodes dossiers as versioned YAML documents.
package yamlfile

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
)

const (
	// Format names the document type in the header.
	Format = "panzer-dossier"
	// Version is the document version written by Encode.
	Version = 1
)

var (
	// ErrMalformed indicates input that is not a dossier document.
	ErrMalformed = apperrors.New(apperrors.CodeDecodeMalformed, "malformed dossier document")
	// ErrUnsupportedVersion indicates a document version this codec cannot read.
	ErrUnsupportedVersion = apperrors.New(apperrors.CodeDecodeUnsupported, "unsupported dossier document version")
)

type document struct {
	Format    string     `yaml:"format"`
	Version   int        `yaml:"version"`
	Root      node       `yaml:"root"`
	Scenarios []scenario `yaml:"scenarios,omitempty"`
}

type scenario struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Outcome string `yaml:"outcome"`
}

type node struct {
	ID           string   `yaml:"id"`
	Kind         string   `yaml:"kind"`
	Name         string   `yaml:"name"`
	UnitType     string   `yaml:"unit_type,omitempty"`
	Nationality  string   `yaml:"nationality,omitempty"`
	Records      []record `yaml:"records,omitempty"`
	Subordinates []node   `yaml:"subordinates,omitempty"`
}

type record struct {
	Scenario   string `yaml:"scenario"`
	Kills      int    `yaml:"kills"`
	Losses     int    `yaml:"losses"`
	Experience int    `yaml:"experience"`
}

// Codec reads and writes YAML dossier documents.
type Codec struct{}

// Name returns the format name.
func (Codec) Name() string { return "yaml" }

// Encode writes d as a YAML document in canonical order.
func (Codec) Encode(w io.Writer, d *dossier.Dossier) error {
	snap := d.Snapshot()
	doc := document{
		Format:  Format,
		Version: Version,
		Root:    fromNode(snap.Root),
	}
	for _, s := range snap.Scenarios {
		doc.Scenarios = append(doc.Scenarios, scenario{ID: string(s.ID), Name: s.Name, Outcome: s.Outcome.String()})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func fromNode(n dossier.NodeSnapshot) node {
	out := node{ID: string(n.ID), Kind: n.Kind.String(), Name: n.Name}
	if n.Kind == hierarchy.KindUnit {
		out.UnitType = n.UnitType.String()
		out.Nationality = n.Nationality.String()
		for _, rec := range n.Records {
			out.Records = append(out.Records, record{
				Scenario:   string(rec.Scenario),
				Kills:      rec.Kills,
				Losses:     rec.Losses,
				Experience: rec.Experience,
			})
		}
	}
	for _, child := range n.Subordinates {
		out.Subordinates = append(out.Subordinates, fromNode(child))
	}
	return out
}

// Decode reads a YAML dossier document. Unknown keys are rejected.
func (Codec) Decode(r io.Reader) (*dossier.Dossier, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Wrap(ErrMalformed.Code, ErrMalformed.Message, err)
	}
	if doc.Format != Format {
		return nil, apperrors.Detail(ErrMalformed, map[string]string{"format": doc.Format})
	}
	if doc.Version != Version {
		return nil, apperrors.Detail(ErrUnsupportedVersion, map[string]string{"version": fmt.Sprint(doc.Version)})
	}

	snap := dossier.Snapshot{}
	for _, s := range doc.Scenarios {
		outcome, err := dossier.OutcomeFromLabel(s.Outcome)
		if err != nil {
			return nil, invalid(err)
		}
		snap.Scenarios = append(snap.Scenarios, dossier.Scenario{ID: dossier.ScenarioID(s.ID), Name: s.Name, Outcome: outcome})
	}
	root, err := toNode(doc.Root)
	if err != nil {
		return nil, invalid(err)
	}
	snap.Root = root
	d, err := dossier.FromSnapshot(snap)
	if err != nil {
		return nil, invalid(err)
	}
	return d, nil
}

func toNode(n node) (dossier.NodeSnapshot, error) {
	out := dossier.NodeSnapshot{ID: hierarchy.NodeID(n.ID), Name: n.Name}
	switch strings.ToUpper(strings.TrimSpace(n.Kind)) {
	case hierarchy.KindFormation.String():
		out.Kind = hierarchy.KindFormation
	case hierarchy.KindUnit.String():
		out.Kind = hierarchy.KindUnit
		unitType, err := hierarchy.UnitTypeFromLabel(n.UnitType)
		if err != nil {
			return out, err
		}
		nationality, err := hierarchy.NationalityFromLabel(n.Nationality)
		if err != nil {
			return out, err
		}
		out.UnitType = unitType
		out.Nationality = nationality
	default:
		return out, apperrors.Detail(ErrMalformed, map[string]string{"node_id": n.ID, "kind": n.Kind})
	}
	for _, rec := range n.Records {
		out.Records = append(out.Records, hierarchy.StatRecord{
			Scenario: hierarchy.ScenarioID(rec.Scenario),
			Stats:    hierarchy.Stats{Kills: rec.Kills, Losses: rec.Losses, Experience: rec.Experience},
		})
	}
	for _, child := range n.Subordinates {
		converted, err := toNode(child)
		if err != nil {
			return out, err
		}
		out.Subordinates = append(out.Subordinates, converted)
	}
	return out, nil
}

// invalid marks a well-formed document whose content breaks a dossier rule.
func invalid(err error) error {
	if apperrors.IsDeserialization(err) {
		return err
	}
	return apperrors.Wrap(apperrors.CodeDecodeInvalid, "dossier document content is invalid", err)
}
