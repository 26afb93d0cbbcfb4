// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from the process environment.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ParseEnvFrom loads configuration from environ instead of the process
// environment. Variables missing from environ fall back to their defaults.
func ParseEnvFrom(target any, environ map[string]string) error {
	if environ == nil {
		environ = map[string]string{}
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: environ}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
