package config

import (
	"path/filepath"
	"testing"
)

// TestDefaultConfig checks the default phantom and output values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.Workers < 1 {
		t.Errorf("Expected at least one worker, got %d", cfg.Processing.Workers)
	}
	if cfg.Phantom.Width != 64 || cfg.Phantom.Height != 64 {
		t.Errorf("Expected 64x64 phantom, got %dx%d", cfg.Phantom.Width, cfg.Phantom.Height)
	}
	if cfg.Phantom.Coils != 8 {
		t.Errorf("Expected 8 coils, got %d", cfg.Phantom.Coils)
	}
	if cfg.Phantom.Echoes != 3 {
		t.Errorf("Expected 3 echoes, got %d", cfg.Phantom.Echoes)
	}
	if !cfg.Output.Verbose {
		t.Errorf("Expected verbose output by default")
	}
}

// TestLoadConfigMissingFile verifies that a missing file falls back to
// the defaults without error.
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Phantom.Coils != DefaultConfig().Phantom.Coils {
		t.Errorf("Expected default config for missing file")
	}
}

// TestSaveAndLoadConfig round-trips a modified configuration through a
// YAML file.
func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Processing.Workers = 3
	cfg.Phantom.Coils = 12
	cfg.Phantom.EchoSpacingMs = 1.5
	cfg.Output.Verbose = false

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Processing.Workers != 3 {
		t.Errorf("Expected workers=3, got %d", loaded.Processing.Workers)
	}
	if loaded.Phantom.Coils != 12 {
		t.Errorf("Expected coils=12, got %d", loaded.Phantom.Coils)
	}
	if loaded.Phantom.EchoSpacingMs != 1.5 {
		t.Errorf("Expected echoSpacingMs=1.5, got %v", loaded.Phantom.EchoSpacingMs)
	}
	if loaded.Output.Verbose {
		t.Errorf("Expected verbose=false after round-trip")
	}
}
