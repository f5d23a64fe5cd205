// Package loader reads the YAML configuration file.
package loader

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xtxerr/flightlog/config"
)

// Load reads a YAML configuration from path. Environment variables in the
// file are expanded, unset fields fall back to the documented defaults.
func Load(path string) (*config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(raw))

	cfg := &config.Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to the defaults
// when it does not.
func LoadOrDefault(path string) (*config.Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
