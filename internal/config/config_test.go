package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pachadotdev/bello/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.ConnectorBind != "127.0.0.1:1842" {
		t.Fatalf("unexpected default bind %q", cfg.ConnectorBind)
	}
	if cfg.ConnectorMaxItems != 1000 {
		t.Fatalf("unexpected default max items %d", cfg.ConnectorMaxItems)
	}
	if !filepath.IsAbs(cfg.DatabasePath) {
		t.Fatalf("database path not normalized: %q", cfg.DatabasePath)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bello.toml")
	content := strings.Join([]string{
		`database_path = "` + filepath.Join(dir, "db", "bello.db") + `"`,
		`storage_dir = "` + filepath.Join(dir, "storage") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`log_format = "JSON"`,
		`connector_bind = "127.0.0.1:0"`,
		`connector_idle_timeout = 5`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected to resolve %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("log format not normalized: %q", cfg.LogFormat)
	}
	if cfg.ConnectorIdleTimeout != 5 {
		t.Fatalf("idle timeout not parsed: %d", cfg.ConnectorIdleTimeout)
	}
}

func TestValidateRejectsNonLoopbackBind(t *testing.T) {
	cfg := config.Default()
	cfg.ConnectorBind = "0.0.0.0:1842"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected non-loopback bind to be rejected")
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unsupported log format to be rejected")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "connector_bind") {
		t.Fatal("sample config missing connector_bind")
	}
	// The sample must itself parse.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
