// Package dossier parses dossier command flags and runs its subcommands.
package dossier

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"golang.org/x/text/message"

	entrypoint "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/cmd"
	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/i18n/catalog"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/otel"
)

// ErrUsage marks a command line that names no known subcommand or passes the
// wrong number of arguments.
var ErrUsage = errors.New("usage")

// Config holds dossier command configuration.
type Config struct {
	Locale    string `env:"DOSSIER_LOCALE" envDefault:"en"`
	Archive   string `env:"DOSSIER_ARCHIVE" envDefault:"dossiers.db"`
	Telemetry otel.Options
}

// ParseConfig parses environment and flags into Config and returns the
// subcommand arguments left after the flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, []string, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, nil, err
	}
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale used to format numbers (BCP 47 tag)")
	fs.StringVar(&cfg.Archive, "archive", cfg.Archive, "Path to the SQLite dossier archive")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// Run executes the subcommand named by args[0].
func Run(ctx context.Context, cfg Config, args []string, out, errOut io.Writer) error {
	logger := log.New(errOut, "", 0)
	options := entrypoint.RunOptions{Telemetry: cfg.Telemetry, Logger: logger}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDossier, options, func(ctx context.Context) error {
		c, err := newCLI(cfg, out, logger)
		if err != nil {
			return err
		}
		return c.dispatch(ctx, args)
	})
}

// ExitCode maps an error returned by Run onto a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrUsage) || errors.Is(err, flag.ErrHelp) {
		return 2
	}
	switch apperrors.CategoryOf(err) {
	case apperrors.CategoryValidation:
		return 3
	case apperrors.CategoryStructural:
		return 4
	case apperrors.CategoryNotFound:
		return 5
	case apperrors.CategoryDeserialization:
		return 6
	case apperrors.CategoryIO:
		return 7
	default:
		return 1
	}
}

// Usage writes the subcommand summary to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dossier [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %s\n", cmd.usage)
	}
}

type cli struct {
	cfg     Config
	out     io.Writer
	logger  *log.Logger
	printer *message.Printer
}

func newCLI(cfg Config, out io.Writer, logger *log.Logger) (*cli, error) {
	printer, err := catalog.Default().Printer(cfg.Locale)
	if err != nil {
		return nil, err
	}
	return &cli{
		cfg:     cfg,
		out:     out,
		logger:  logger,
		printer: printer,
	}, nil
}

type command struct {
	name    string
	usage   string
	minArgs int
	maxArgs int
	run     func(c *cli, ctx context.Context, args []string) error
}

var commands = []command{
	{name: "show", usage: "show <file>", minArgs: 1, maxArgs: 1, run: (*cli).show},
	{name: "stats", usage: "stats <file> <unit-name> [kills|losses|experience]", minArgs: 2, maxArgs: 3, run: (*cli).stats},
	{name: "import", usage: "import <script.lua> <out>", minArgs: 2, maxArgs: 2, run: (*cli).importScript},
	{name: "convert", usage: "convert <in> <out>", minArgs: 2, maxArgs: 2, run: (*cli).convert},
	{name: "move", usage: "move <file> <unit-name> <formation-name>", minArgs: 3, maxArgs: 3, run: (*cli).move},
	{name: "archive", usage: "archive put <file> <id> [name] | get <id> <out> | list | delete <id>", minArgs: 1, maxArgs: 4, run: (*cli).archive},
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		rest := args[1:]
		if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
			return fmt.Errorf("%w: dossier %s", ErrUsage, cmd.usage)
		}
		return cmd.run(c, ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}
