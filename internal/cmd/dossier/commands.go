package dossier

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/decoration"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/hierarchy"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage/sqlite"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/tools/dossierscript"
)

// ErrAmbiguousName indicates a name shared by several nodes of a kind.
var ErrAmbiguousName = apperrors.New(apperrors.CodeNodeNameAmbiguous, "name matches more than one node")

func (c *cli) load(ctx context.Context, path string) (*dossier.Dossier, error) {
	codec, err := storage.CodecForPath(path)
	if err != nil {
		return nil, err
	}
	return storage.NewGateway(codec).LoadFile(ctx, path)
}

func (c *cli) save(ctx context.Context, d *dossier.Dossier, path string) error {
	codec, err := storage.CodecForPath(path)
	if err != nil {
		return err
	}
	return storage.NewGateway(codec).SaveFile(ctx, d, path)
}

func (c *cli) show(ctx context.Context, args []string) error {
	d, err := c.load(ctx, args[0])
	if err != nil {
		return err
	}
	tree := d.Tree()
	order := hierarchy.NewOrder(tree)
	for _, nodeID := range order.Canonical() {
		n, _ := tree.Node(nodeID)
		indent := strings.Repeat("  ", len(tree.Ancestors(nodeID)))
		if n.IsFormation() {
			fmt.Fprintf(c.out, "%s%s\n", indent, n.Name)
			continue
		}
		fmt.Fprintf(c.out, "%s%s (%s, %s)\n", indent, n.Name, n.UnitType, n.Nationality)
	}

	scenarios := d.Scenarios()
	if len(scenarios) == 0 {
		return nil
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.printer.Sprintf("show.scenarios"))
	for i, s := range scenarios {
		fmt.Fprintln(c.out, c.printer.Sprintf("show.scenario", i+1, s.Name, s.Outcome))
	}
	summary := d.OutcomeSummary()
	var parts []string
	for _, outcome := range dossier.Outcomes() {
		if count := summary[outcome]; count > 0 {
			parts = append(parts, c.printer.Sprintf("show.outcome", outcome, count))
		}
	}
	fmt.Fprintln(c.out, c.printer.Sprintf("show.outcomes", strings.Join(parts, ", ")))
	return nil
}

func (c *cli) stats(ctx context.Context, args []string) error {
	d, err := c.load(ctx, args[0])
	if err != nil {
		return err
	}
	unit, err := findNode(d.Tree(), args[1], hierarchy.KindUnit)
	if err != nil {
		return err
	}
	kinds := []dossier.StatKind{dossier.StatKindKills, dossier.StatKindLosses, dossier.StatKindExperience}
	if len(args) == 3 {
		kind, err := dossier.StatKindFromLabel(args[2])
		if err != nil {
			return err
		}
		kinds = []dossier.StatKind{kind}
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for i, kind := range kinds {
		points, err := d.ProgressionSeries(unit, kind)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, c.printer.Sprintf("stats.header", kind))
		running := dossier.Cumulative(points)
		for j, p := range points {
			c.printer.Fprintf(tw, "%s\t%d\t%d\n", p.Name, p.Value, running[j].Value)
		}
	}
	return tw.Flush()
}

func (c *cli) importScript(ctx context.Context, args []string) error {
	d, err := dossierscript.LoadFile(args[0])
	if err != nil {
		return err
	}
	if err := c.save(ctx, d, args[1]); err != nil {
		return err
	}
	c.logger.Print(c.printer.Sprintf("log.imported", filepath.Base(args[0]), args[1], d.Tree().Len()))
	return nil
}

func (c *cli) convert(ctx context.Context, args []string) error {
	d, err := c.load(ctx, args[0])
	if err != nil {
		return err
	}
	return c.save(ctx, d, args[1])
}

func (c *cli) move(ctx context.Context, args []string) error {
	d, err := c.load(ctx, args[0])
	if err != nil {
		return err
	}
	workspace := decoration.NewWorkspace(d)
	defer workspace.ReplaceRoot(nil)
	session := workspace.Session()

	unitID, err := findNode(d.Tree(), args[1], hierarchy.KindUnit)
	if err != nil {
		return err
	}
	formationID, err := findNode(d.Tree(), args[2], hierarchy.KindFormation)
	if err != nil {
		return err
	}
	unit, err := session.Decorate(unitID)
	if err != nil {
		return err
	}
	formation, err := session.Decorate(formationID)
	if err != nil {
		return err
	}

	from := ""
	if previous, ok := unit.Superior(); ok {
		from = previous.Name()
	}
	if err := session.MoveUnit(unit, formation); err != nil {
		return err
	}
	if err := c.save(ctx, d, args[0]); err != nil {
		return err
	}
	c.logger.Print(c.printer.Sprintf("log.moved", unit.Name(), from, formation.Name()))
	return nil
}

func (c *cli) archive(ctx context.Context, args []string) (err error) {
	type archiveCommand struct {
		usage   string
		minArgs int
		maxArgs int
		run     func(ctx context.Context, store *sqlite.Store, args []string) error
	}
	subcommands := map[string]archiveCommand{
		"put":    {usage: "archive put <file> <id> [name]", minArgs: 2, maxArgs: 3, run: c.archivePut},
		"get":    {usage: "archive get <id> <out>", minArgs: 2, maxArgs: 2, run: c.archiveGet},
		"list":   {usage: "archive list", run: c.archiveList},
		"delete": {usage: "archive delete <id>", minArgs: 1, maxArgs: 1, run: c.archiveDelete},
	}
	sub, ok := subcommands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown archive command %q", ErrUsage, args[0])
	}
	rest := args[1:]
	if len(rest) < sub.minArgs || len(rest) > sub.maxArgs {
		return fmt.Errorf("%w: dossier %s", ErrUsage, sub.usage)
	}

	store, err := sqlite.Open(ctx, c.cfg.Archive)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
	}()
	return sub.run(ctx, store, rest)
}

func (c *cli) archivePut(ctx context.Context, store *sqlite.Store, args []string) error {
	d, err := c.load(ctx, args[0])
	if err != nil {
		return err
	}
	name := ""
	if len(args) == 3 {
		name = args[2]
	} else if root, ok := d.Tree().Node(d.Root()); ok {
		name = root.Name
	}
	if err := store.SaveDossier(ctx, args[1], name, d); err != nil {
		return err
	}
	c.logger.Print(c.printer.Sprintf("log.archived", args[0], args[1]))
	return nil
}

func (c *cli) archiveGet(ctx context.Context, store *sqlite.Store, args []string) error {
	d, err := store.LoadDossier(ctx, args[0])
	if err != nil {
		return err
	}
	return c.save(ctx, d, args[1])
}

func (c *cli) archiveList(ctx context.Context, store *sqlite.Store, _ []string) error {
	entries, err := store.ListDossiers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, c.printer.Sprintf("archive.header"))
	for _, e := range entries {
		c.printer.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", e.ID, e.Name, e.Nodes, e.Scenarios, e.SavedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func (c *cli) archiveDelete(ctx context.Context, store *sqlite.Store, args []string) error {
	if err := store.DeleteDossier(ctx, args[0]); err != nil {
		return err
	}
	c.logger.Print(c.printer.Sprintf("log.deleted", args[0]))
	return nil
}

// findNode returns the attached node of kind named name.
func findNode(tree *hierarchy.Tree, name string, kind hierarchy.Kind) (hierarchy.NodeID, error) {
	var matches []hierarchy.NodeID
	tree.Walk(func(n hierarchy.Node, _ int) bool {
		if n.Kind == kind && n.Name == name {
			matches = append(matches, n.ID)
		}
		return true
	})
	meta := map[string]string{"name": name, "kind": kind.String()}
	switch len(matches) {
	case 0:
		return "", apperrors.Detail(hierarchy.ErrNodeNotFound, meta)
	case 1:
		return matches[0], nil
	default:
		return "", apperrors.Detail(ErrAmbiguousName, meta)
	}
}
