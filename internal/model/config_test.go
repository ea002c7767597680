package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.TimeoutSec != DefaultTimeoutSec {
		t.Errorf("TimeoutSec = %d, want %d", cfg.API.TimeoutSec, DefaultTimeoutSec)
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api:\n  base_url: https://tasks.example.com/\n  timeout_sec: 5\njournal:\n  path: /tmp/j.db\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "https://tasks.example.com" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSec != 5 {
		t.Errorf("TimeoutSec = %d", cfg.API.TimeoutSec)
	}
	if cfg.Journal.Path != "/tmp/j.db" {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TASKTRACKER_API_BASE_URL", "http://api.internal:8080")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://api.internal:8080" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.API.BaseURL = "https://saved.example.com"
	cfg.API.TimeoutSec = 30

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.BaseURL != "https://saved.example.com" || loaded.API.TimeoutSec != 30 {
		t.Errorf("loaded API = %+v", loaded.API)
	}
}
