package id

import (
	"encoding/base32"
	"strings"
	"testing"
)

func TestNewIDFormat(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if strings.Contains(id, "=") {
		t.Fatal("expected no padding")
	}
	if len(id) != 26 {
		t.Fatalf("expected 26-character id, got %d", len(id))
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			t.Fatalf("unexpected character %q in id", r)
		}
	}
}

func TestNewIDSetsUUIDVersionAndVariant(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(id))
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	if len(decoded) != 16 {
		t.Fatalf("expected 16 decoded bytes, got %d", len(decoded))
	}
	if version := decoded[6] >> 4; version != 4 {
		t.Fatalf("expected version 4, got %d", version)
	}
	if variant := decoded[8] & 0xC0; variant != 0x80 {
		t.Fatalf("expected variant 0x80, got 0x%X", variant)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	next := Sequence("n")
	for _, want := range []string{"n-1", "n-2", "n-3"} {
		got, err := next()
		if err != nil {
			t.Fatalf("sequence: %v", err)
		}
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "abc", want: true},
		{value: "n-12", want: true},
		{value: "", want: false},
		{value: " abc", want: false},
		{value: "a\nb", want: false},
	}
	for _, tt := range tests {
		if got := Valid(tt.value); got != tt.want {
			t.Fatalf("Valid(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
