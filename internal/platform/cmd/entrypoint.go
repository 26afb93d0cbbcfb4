// Package cmd holds startup helpers shared by command entrypoints.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/config"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/otel"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/timeouts"
)

// ServiceDossier names the dossier command in telemetry resources.
const ServiceDossier = "dossier"

// RunOptions controls shared entrypoint behavior for commands.
type RunOptions struct {
	// Telemetry configures trace export for the run.
	Telemetry otel.Options
	// ShutdownTimeout sets the timeout used when stopping telemetry.
	ShutdownTimeout time.Duration
	// Logger receives telemetry shutdown failures. Defaults to the std logger.
	Logger *log.Logger
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseConfigFromArgs loads defaults from env and then parses flags.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string) error {
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	return ParseArgs(fs, args)
}

// RunWithTelemetry configures tracing and executes run.
func RunWithTelemetry(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service, options.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownTimeout := options.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = timeouts.TelemetryShutdown
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger := options.Logger
			if logger == nil {
				logger = log.Default()
			}
			logger.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}
