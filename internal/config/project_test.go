package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProjectFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".gavel.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing project file: %v", err)
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `model: gemini-2.5-pro
focus:
  - error handling
  - concurrency
exclude:
  - "generated/**"
failUnder: 65
`)

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject error: %v", err)
	}
	if p.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want %q", p.Model, "gemini-2.5-pro")
	}
	if len(p.Focus) != 2 || p.Focus[0] != "error handling" {
		t.Errorf("Focus = %v, want [error handling concurrency]", p.Focus)
	}
	if len(p.Exclude) != 1 || p.Exclude[0] != "generated/**" {
		t.Errorf("Exclude = %v, want [generated/**]", p.Exclude)
	}
	if p.FailUnder != 65 {
		t.Errorf("FailUnder = %d, want 65", p.FailUnder)
	}
}

func TestLoadProject_Missing(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProject error: %v", err)
	}
	if p.Model != "" || len(p.Focus) != 0 {
		t.Errorf("expected zero Project for missing file, got %+v", p)
	}
}

func TestLoadProject_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "model: [unclosed")

	if _, err := LoadProject(dir); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestLoadProject_InvalidFailUnder(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, "failUnder: 200\n")

	if _, err := LoadProject(dir); err == nil {
		t.Error("Expected error for failUnder above 100")
	}
}

func TestApplyProject(t *testing.T) {
	cfg := Default()
	ApplyProject(&cfg, Project{
		Model:     "gemini-3-flash-preview",
		Exclude:   []string{"testdata/**"},
		FailUnder: 55,
	})

	if cfg.Model != "gemini-3-flash-preview" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gemini-3-flash-preview")
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "testdata/**" {
		t.Errorf("Exclude = %v, want [testdata/**]", cfg.Exclude)
	}
	if cfg.FailUnder != 55 {
		t.Errorf("FailUnder = %d, want 55", cfg.FailUnder)
	}
}

func TestApplyProject_Zero(t *testing.T) {
	cfg := Default()
	ApplyProject(&cfg, Project{})

	if cfg.Model != "gpt-5.3-codex" {
		t.Errorf("Model = %q, want default preserved", cfg.Model)
	}
	if len(cfg.Include) != 1 || cfg.Include[0] != "**/*" {
		t.Errorf("Include = %v, want default preserved", cfg.Include)
	}
}

func TestLoadWithProject(t *testing.T) {
	cfgDir := t.TempDir()
	projDir := t.TempDir()

	orig := os.Getenv("XDG_CONFIG_HOME")
	defer func() {
		if orig == "" {
			os.Unsetenv("XDG_CONFIG_HOME")
		} else {
			os.Setenv("XDG_CONFIG_HOME", orig)
		}
	}()
	os.Setenv("XDG_CONFIG_HOME", cfgDir)

	writeProjectFile(t, projDir, `model: gemini-2.5-pro
focus:
  - security
failUnder: 70
`)

	cfg, focus, err := LoadWithProject(projDir, nil)
	if err != nil {
		t.Fatalf("LoadWithProject error: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want project value", cfg.Model)
	}
	if cfg.FailUnder != 70 {
		t.Errorf("FailUnder = %d, want 70", cfg.FailUnder)
	}
	if len(focus) != 1 || focus[0] != "security" {
		t.Errorf("focus = %v, want [security]", focus)
	}

	// Flag overrides beat the project overlay.
	cfg, _, err = LoadWithProject(projDir, map[string]string{"model": "gpt-5.2"})
	if err != nil {
		t.Fatalf("LoadWithProject error: %v", err)
	}
	if cfg.Model != "gpt-5.2" {
		t.Errorf("Model = %q, want override value", cfg.Model)
	}
}
