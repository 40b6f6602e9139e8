package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Server.BaseURL != nil {
		t.Fatalf("expected empty config")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
base-url = "http://file.example:9000"
timeout = "5s"

[cache]
enabled = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("CHALLENGER_BASE_URL", "http://env.example:7000")
	t.Setenv("CHALLENGER_TIMEOUT", "")
	t.Setenv("CHALLENGER_CACHE", "")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.BaseURL != "http://env.example:7000" {
		t.Fatalf("expected env base url to win, got %q", s.BaseURL)
	}
	if s.Timeout != 5*time.Second || !s.CacheEnabled || s.LogLevel != "debug" {
		t.Fatalf("unexpected settings %+v", s)
	}
}

func TestResolveDefaults(t *testing.T) {
	s, err := Resolve(FileConfig{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if s.BaseURL != DefaultBaseURL || s.Timeout != DefaultTimeout || s.CacheEnabled {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestResolveInvalidTimeout(t *testing.T) {
	bad := "soon"
	if _, err := Resolve(FileConfig{Server: ServerConfig{Timeout: &bad}}); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
}
