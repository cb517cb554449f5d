package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ListenAddr != ":8000" {
		t.Errorf("listen_addr = %q, want :8000", cfg.Server.ListenAddr)
	}
	if cfg.Telemetry.Interval.Std() != 5*time.Second {
		t.Errorf("interval = %v, want 5s", cfg.Telemetry.Interval)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  listen_addr: \":9090\"\nanalysis:\n  root: /srv/code\ntelemetry:\n  interval: 2s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want :9090", cfg.Server.ListenAddr)
	}
	if cfg.Analysis.Root != "/srv/code" {
		t.Errorf("root = %q, want /srv/code", cfg.Analysis.Root)
	}
	if cfg.Telemetry.Interval.Std() != 2*time.Second {
		t.Errorf("interval = %v, want 2s", cfg.Telemetry.Interval)
	}
	// Untouched sections keep their defaults.
	if cfg.Storage.DataDir != "data" {
		t.Errorf("data_dir = %q, want data", cfg.Storage.DataDir)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  listen_addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CODESCOPE_LISTEN_ADDR", ":7070")
	t.Setenv("CODESCOPE_TELEMETRY_INTERVAL", "250ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ListenAddr != ":7070" {
		t.Errorf("listen_addr = %q, want :7070", cfg.Server.ListenAddr)
	}
	if cfg.Telemetry.Interval.Std() != 250*time.Millisecond {
		t.Errorf("interval = %v, want 250ms", cfg.Telemetry.Interval)
	}
}

func TestMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestBadInterval(t *testing.T) {
	t.Setenv("CODESCOPE_TELEMETRY_INTERVAL", "not-a-duration")
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for a bad interval")
	}
}
