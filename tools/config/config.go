// Package config loads settings from an optional YAML file and the
// environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadFile decodes the YAML file at path into target. Keys missing from the
// file leave target untouched.
func LoadFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Load applies the YAML file at path, when one is given, then the
// environment. Set variables win over the file; unset ones keep it.
func Load(path string, target any) error {
	if path != "" {
		if err := LoadFile(path, target); err != nil {
			return err
		}
	}
	return ParseEnv(target)
}

// ErrMissing is wrapped by Require.
var ErrMissing = errors.New("missing required setting")

// Require fails with ErrMissing when value is empty.
func Require(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissing, name)
	}
	return nil
}
