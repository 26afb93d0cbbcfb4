package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Archive string `env:"CMD_TEST_ARCHIVE" envDefault:"dossiers.db"`
	Locale  string `env:"CMD_TEST_LOCALE" envDefault:"en"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_ARCHIVE", "env.db")
	t.Setenv("CMD_TEST_LOCALE", "de")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.Archive, "archive", cfgRef.Archive, "archive")
	fs.StringVar(&cfgRef.Locale, "locale", cfgRef.Locale, "locale")

	if err := ParseArgs(fs, []string{"-archive", "flag.db"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.Archive != "flag.db" {
		t.Fatalf("expected flag value for archive, got %q", cfgRef.Archive)
	}
	if cfgRef.Locale != "de" {
		t.Fatalf("expected env locale, got %q", cfgRef.Locale)
	}
}

func TestParseConfigFromArgsReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_LOCALE", "fr")

	cfgRef := testConfig{}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfgRef.Archive, "archive", "", "archive")
	if err := ParseConfigFromArgs(&cfgRef, fs, []string{"-archive", "other.db", "show"}); err != nil {
		t.Fatalf("parse config and args: %v", err)
	}
	if cfgRef.Archive != "other.db" {
		t.Fatalf("expected parsed flag archive, got %q", cfgRef.Archive)
	}
	if cfgRef.Locale != "fr" {
		t.Fatalf("expected env locale, got %q", cfgRef.Locale)
	}
	if got := fs.Args(); len(got) != 1 || got[0] != "show" {
		t.Fatalf("expected remaining args [show], got %v", got)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", RunOptions{}, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceDossier, RunOptions{}, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	want := errors.New("boom")
	called := false
	err := RunWithTelemetry(context.Background(), ServiceDossier, RunOptions{}, func(context.Context) error {
		called = true
		return want
	})
	if !called {
		t.Fatal("expected run to be called")
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected run error, got %v", err)
	}
}
