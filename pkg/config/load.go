package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/blockbridge/pkg/units"
	"gopkg.in/yaml.v3"
)

// Load returns the defaults overlaid with the YAML file at path. An empty
// path yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks that the settings can be used.
func (c *Config) Validate() error {
	if _, err := units.Parse(c.Conversion.ModelUnits); err != nil {
		return fmt.Errorf("config: conversion.model_units: %w", err)
	}
	if c.Conversion.CommitInfo == "" {
		return fmt.Errorf("config: conversion.commit_info must not be empty")
	}
	if c.Conversion.NameSeparator == "" {
		return fmt.Errorf("config: conversion.name_separator must not be empty")
	}
	if c.Kernel.MeshCells <= 0 {
		return fmt.Errorf("config: kernel.mesh_cells must be positive, got %d", c.Kernel.MeshCells)
	}
	return nil
}

// ModelUnits returns the parsed host working unit. Call Validate first;
// an unparseable value yields units.None.
func (c *Config) ModelUnits() units.Unit {
	u, _ := units.Parse(c.Conversion.ModelUnits)
	return u
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
