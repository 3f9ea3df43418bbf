package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "catalog.db"
mock:
  startup_delay: 1500ms
  failure_rate: -1
client:
  base_delay: 50ms
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if cfg.Mock.StartupDelay != 1500*time.Millisecond {
		t.Errorf("startup_delay = %v, want 1.5s", cfg.Mock.StartupDelay)
	}
	if cfg.Mock.FailureRate != -1 {
		t.Errorf("failure_rate = %v, want -1", cfg.Mock.FailureRate)
	}
	if cfg.Client.BaseDelay != 50*time.Millisecond {
		t.Errorf("base_delay = %v, want 50ms", cfg.Client.BaseDelay)
	}
	if cfg.Client.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("base_url = %q, want derived from server address", cfg.Client.BaseURL)
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/catalog.db"
  bleve_index_path: "./data/bleve"
mock:
  fixtures_path: "./fixtures/catalog.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "catalog.db")
	if cfg.Storage.DatabasePath != wantDB {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, wantDB)
	}
	wantFixtures := filepath.Join(dir, "fixtures", "catalog.json")
	if cfg.Mock.FixturesPath != wantFixtures {
		t.Errorf("fixtures_path = %s, want %s", cfg.Mock.FixturesPath, wantFixtures)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestExpandPath_keepsSpecialValues(t *testing.T) {
	for _, p := range []string{"", ":memory:", "/abs/path"} {
		if got := expandPath(p, "/cfg"); got != p {
			t.Errorf("expandPath(%q) = %q, want unchanged", p, got)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Client.MaxRetries != 3 {
		t.Errorf("default max_retries: got %d, want 3", cfg.Client.MaxRetries)
	}
	if cfg.Client.BaseDelay != 200*time.Millisecond {
		t.Errorf("default base_delay: got %v, want 200ms", cfg.Client.BaseDelay)
	}
	if cfg.Client.SearchLimit != 10 {
		t.Errorf("default search_limit: got %d, want 10", cfg.Client.SearchLimit)
	}
	if cfg.Mock.SearchLatency != 800*time.Millisecond || cfg.Mock.ItemLatency != 500*time.Millisecond {
		t.Errorf("default latencies: got search=%v item=%v", cfg.Mock.SearchLatency, cfg.Mock.ItemLatency)
	}
	if cfg.Mock.FailureRate != 0.05 {
		t.Errorf("default failure_rate: got %v", cfg.Mock.FailureRate)
	}
	if cfg.Client.BaseURL != "http://localhost:8080" {
		t.Errorf("default base_url: got %s", cfg.Client.BaseURL)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
		Mock:    MockConfig{StartupDelay: 2 * time.Second},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Mock.StartupDelay != 2*time.Second {
		t.Errorf("loaded startup_delay: got %v", loaded.Mock.StartupDelay)
	}
}
