package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// projectFileName is the per-repository settings file, looked up in the
// directory being reviewed.
const projectFileName = ".gavel.yaml"

// Project holds per-repository settings from .gavel.yaml. They overlay
// the user-level config for runs inside that repository.
type Project struct {
	Model     string   `yaml:"model"`
	Focus     []string `yaml:"focus"`
	Include   []string `yaml:"include"`
	Exclude   []string `yaml:"exclude"`
	FailUnder int      `yaml:"failUnder"`
}

// LoadProject reads .gavel.yaml from dir.
// Returns a zero Project if the file does not exist.
func LoadProject(dir string) (Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, projectFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Project{}, nil
		}
		return Project{}, err
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("parsing %s: %w", projectFileName, err)
	}

	// Validate before merging so typos in the raw file surface early.
	if err := p.Validate(); err != nil {
		return Project{}, fmt.Errorf("invalid %s: %w", projectFileName, err)
	}
	return p, nil
}

// Validate checks ranges on the raw project file values.
func (p Project) Validate() error {
	if p.FailUnder < 0 || p.FailUnder > 100 {
		return fmt.Errorf("failUnder must be between 0 and 100, got %d", p.FailUnder)
	}
	return nil
}

// ApplyProject overlays per-repository settings on the effective config.
// Explicit (non-zero) values always win.
func ApplyProject(cfg *Config, p Project) {
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if len(p.Include) > 0 {
		cfg.Include = p.Include
	}
	if len(p.Exclude) > 0 {
		cfg.Exclude = p.Exclude
	}
	if p.FailUnder > 0 {
		cfg.FailUnder = p.FailUnder
	}
}
