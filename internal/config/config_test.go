package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shadefuzz.json")

	content := `{
		"enablePointers": true,
		"maxFns": 8,
		"minStructs": 2,
		"maxStructs": 4,
		"enabledFns": ["extractBits", "insertBits"]
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.EnablePointers == nil || *cfg.EnablePointers != true {
		t.Errorf("EnablePointers: got %v, want true", cfg.EnablePointers)
	}
	if cfg.MaxFns == nil || *cfg.MaxFns != 8 {
		t.Errorf("MaxFns: got %v, want 8", cfg.MaxFns)
	}
	if len(cfg.EnabledFns) != 2 {
		t.Errorf("EnabledFns: got %v, want 2 items", cfg.EnabledFns)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "shaders")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}

	configPath := filepath.Join(tmpDir, "project", "shadefuzz.json")
	content := `{"recondition": true}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if foundPath != configPath {
		t.Errorf("found config at %s, expected %s", foundPath, configPath)
	}
	if cfg.Recondition == nil || *cfg.Recondition != true {
		t.Errorf("Recondition: got %v, want true", cfg.Recondition)
	}
}

func TestLoadNoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, path, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %v", cfg)
	}
	if path != "" {
		t.Errorf("expected empty path, got %s", path)
	}
}

func TestToOptionsUsesDefaultsForUnsetFields(t *testing.T) {
	trueVal := true
	cfg := &Config{EnablePointers: &trueVal}

	opts := cfg.ToOptions()

	if !opts.EnablePointers {
		t.Errorf("EnablePointers: got false, want true")
	}
	if opts.MaxFns == 0 {
		t.Errorf("MaxFns: expected Defaults() value, got 0")
	}
}

func TestMergeCLIOverridesConfig(t *testing.T) {
	configPreset := "tint"
	cliPreset := "tint"
	cfg := &Config{Preset: &configPreset}

	maxFns := uint32(2)
	cliOpts := MergeOptions{MaxFns: &maxFns, Preset: &cliPreset}

	opts := cfg.Merge(cliOpts)

	if opts.MaxFns != 2 {
		t.Errorf("MaxFns: got %d, want 2 (CLI override)", opts.MaxFns)
	}
	if opts.Preset == nil || *opts.Preset != "tint" {
		t.Errorf("Preset: got %v, want tint", opts.Preset)
	}
}

func TestMergeAppendsEnabledFns(t *testing.T) {
	cfg := &Config{EnabledFns: []string{"extractBits"}}
	cliOpts := MergeOptions{KeepEnabledFns: []string{"insertBits"}}

	opts := cfg.Merge(cliOpts)

	if len(opts.EnabledFns) != 2 {
		t.Errorf("EnabledFns: got %d items, want 2", len(opts.EnabledFns))
	}
}

func TestConfigFileNames(t *testing.T) {
	tmpDir := t.TempDir()

	rcPath := filepath.Join(tmpDir, ".shadefuzzrc")
	if err := os.WriteFile(rcPath, []byte(`{"recondition": true}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, foundPath, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Base(foundPath) != ".shadefuzzrc" {
		t.Errorf("expected .shadefuzzrc, got %s", filepath.Base(foundPath))
	}

	jsonPath := filepath.Join(tmpDir, "shadefuzz.json")
	if err := os.WriteFile(jsonPath, []byte(`{"recondition": false}`), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if filepath.Base(foundPath) != "shadefuzz.json" {
		t.Errorf("expected shadefuzz.json (higher priority), got %s", filepath.Base(foundPath))
	}
	if cfg.Recondition == nil || *cfg.Recondition != false {
		t.Errorf("Recondition: got %v, want false (from shadefuzz.json)", cfg.Recondition)
	}
}
