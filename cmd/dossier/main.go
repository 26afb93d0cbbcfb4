// Package main runs the dossier command line tool.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	dossiercmd "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/cmd/dossier"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/config"
)

func main() {
	flag.Usage = func() {
		dossiercmd.Usage(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	cfg, args, err := dossiercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = dossiercmd.Run(ctx, cfg, args, os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	if errors.Is(err, dossiercmd.ErrUsage) {
		flag.Usage()
	}
	stop()
	config.ExitCodef(dossiercmd.ExitCode(err), "Error: %v", err)
}
