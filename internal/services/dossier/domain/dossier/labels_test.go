package dossier

import (
	"errors"
	"testing"
)

func TestOutcomeFromLabel(t *testing.T) {
	tests := []struct {
		input string
		want  Outcome
		err   bool
	}{
		{input: "PENDING", want: OutcomePending},
		{input: " major_victory ", want: OutcomeMajorVictory},
		{input: "OUTCOME_MINOR_VICTORY", want: OutcomeMinorVictory},
		{input: "loss", want: OutcomeLoss},
		{input: "draw", err: true},
		{input: "", err: true},
	}
	for _, tc := range tests {
		got, err := OutcomeFromLabel(tc.input)
		if tc.err {
			if !errors.Is(err, ErrInvalidOutcome) {
				t.Fatalf("%q: expected invalid outcome, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.input, tc.want, got)
		}
	}
}

func TestOutcomeLabelsRoundTrip(t *testing.T) {
	for _, o := range Outcomes() {
		got, err := OutcomeFromLabel(o.String())
		if err != nil || got != o {
			t.Fatalf("expected %s, got %s (%v)", o, got, err)
		}
	}
	if OutcomeUnspecified.Valid() {
		t.Fatal("expected unspecified outcome to be invalid")
	}
}

func TestStatKindFromLabel(t *testing.T) {
	for input, want := range map[string]StatKind{
		"kills":                StatKindKills,
		"LOSSES":               StatKindLosses,
		"stat_kind_experience": StatKindExperience,
	} {
		got, err := StatKindFromLabel(input)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (%v)", input, want, got, err)
		}
	}
	if _, err := StatKindFromLabel("morale"); !errors.Is(err, ErrInvalidStatKind) {
		t.Fatalf("expected invalid stat kind, got %v", err)
	}
}
