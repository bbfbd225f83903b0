package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"storyloom/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if cfg.Episodes.DefaultTitle != "Generated Episode" {
		t.Fatalf("unexpected default title: %q", cfg.Episodes.DefaultTitle)
	}
	if cfg.Episodes.DefaultDurationSec != 15 {
		t.Fatalf("unexpected default duration: %d", cfg.Episodes.DefaultDurationSec)
	}
	if cfg.Jobs.StepDelayMS != 100 {
		t.Fatalf("unexpected step delay: %d", cfg.Jobs.StepDelayMS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
api_bind = "127.0.0.1:0"

[jobs]
step_delay_ms = 5

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Jobs.StepDelayMS != 5 {
		t.Fatalf("expected step delay override 5, got %d", cfg.Jobs.StepDelayMS)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "storyloom.db") {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath())
	}
}

func TestValidateRejectsInvertedDurationBounds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[episodes]
min_duration_sec = 60
max_duration_sec = 10
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for inverted duration bounds")
	}
}

func TestNormalizeFallsBackToConsoleFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown format to normalize to console, got %q", cfg.Logging.Format)
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if _, err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample config already exists")
	}
}
