// Package id generates the surrogate identifiers that tie dossier nodes and
// scenarios together across decoration sessions and persisted files.
//
// Identifiers are UUIDv4 bytes encoded as lowercase base32 without padding,
// 26 characters long and safe for file names and YAML keys.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generator produces a new identifier.
type Generator func() (string, error)

// NewID generates a random identifier.
func NewID() (string, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}

// Sequence returns a deterministic generator yielding prefix-1, prefix-2, ...
// It is meant for tests and scripted fixtures where byte-stable output matters.
func Sequence(prefix string) Generator {
	next := 0
	return func() (string, error) {
		next++
		return fmt.Sprintf("%s-%d", prefix, next), nil
	}
}

// Valid reports whether value is usable as an identifier: non-empty, no
// surrounding whitespace, and no control characters.
func Valid(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return false
	}
	for _, r := range value {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
