package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/vitrina/internal/cli"
	"github.com/hyperjump/vitrina/internal/config"
	"github.com/hyperjump/vitrina/internal/fetch"
	"github.com/hyperjump/vitrina/internal/server"
	"github.com/hyperjump/vitrina/internal/storage"
	"go.uber.org/zap"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"iphone 13", "-limit", "5"},
			expected: []string{"-limit", "5", "iphone 13"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "iphone"},
			expected: []string{"-output", "json", "iphone"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"iphone 13"},
			expected: []string{"iphone 13"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"MLA1", "MLA2", "-output", "json"},
			expected: []string{"-output", "json", "MLA1", "MLA2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"iphone"}, "iphone"},
		{"multiple words", []string{"iphone", "13"}, "iphone 13"},
		{"single quoted phrase", []string{"iphone 13"}, "iphone 13"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
client:
  max_retries: 5
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.Client.MaxRetries != 5 {
		t.Errorf("unexpected config: debug=%v max_retries=%d", cfg.Debug, cfg.Client.MaxRetries)
	}
}

func TestLoadConfig_defaultsWhenDefaultPathMissing(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("default config present on this machine")
	}
	chdir(t, t.TempDir())

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty for built-in defaults", resolved)
	}
	if cfg.Client.BaseURL != "http://localhost:8080" || cfg.Client.MaxRetries != config.DefaultMaxRetries {
		t.Errorf("unexpected defaults: %+v", cfg.Client)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Client.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("client base url = %q", cfg.Client.BaseURL)
	}
}

func TestLoadConfig_explicitMissingFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

// startAPI runs the mock API in-process on the embedded catalog and returns a client setup for it.
func startAPI(t *testing.T) *clientSetup {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DatabasePath = storage.MemoryPath
	cfg.Mock.SearchLatency = time.Millisecond
	cfg.Mock.ItemLatency = time.Millisecond
	cfg.Mock.FailureRate = -1

	components, err := initializeComponents(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("initializeComponents: %v", err)
	}
	t.Cleanup(components.Close)
	if _, err := components.Indexer.LoadFile(context.Background(), ""); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	srv := server.NewServer(components.Engine, components.Indexer, cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg.Client.BaseURL = ts.URL
	cfg.Client.BaseDelay = time.Millisecond
	return &clientSetup{
		cfg:    cfg,
		unit:   newUnit(cfg.Client, zap.NewNop()),
		format: cli.OutputJSON,
		logger: zap.NewNop(),
	}
}

func TestSearchOnce(t *testing.T) {
	setup := startAPI(t)
	state, err := searchOnce(context.Background(), setup, "iphone")
	if err != nil {
		t.Fatalf("searchOnce: %v", err)
	}
	if state.Error != "" || len(state.Results) != 3 || !state.HasSearched {
		t.Errorf("unexpected state: %+v", state)
	}

	state, err = searchOnce(context.Background(), setup, "heladera")
	if err != nil {
		t.Fatalf("searchOnce: %v", err)
	}
	if state.Error != "" || len(state.Results) != 0 {
		t.Errorf("no-results search should be an empty success, got %+v", state)
	}
}

func TestFetchDetails(t *testing.T) {
	setup := startAPI(t)
	states, err := fetchDetails(context.Background(), setup, []string{"MLA998877665", "MLA000", "MLA123456789"})
	if err != nil {
		t.Fatalf("fetchDetails: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("want 3 states, got %d", len(states))
	}
	if states[0].Error != "" || !bytes.Contains(states[0].Product, []byte("iPhone 16 Pro")) {
		t.Errorf("state[0] = %+v", states[0])
	}
	if states[1].Kind != fetch.KindNotFound || states[1].Error != fetch.MessageNotFound {
		t.Errorf("state[1] = %+v", states[1])
	}
	// Listings without a full product are served a derived product.
	if states[2].Error != "" || states[2].ID != "MLA123456789" {
		t.Errorf("state[2] = %+v", states[2])
	}
}

func TestStatusViaHTTP(t *testing.T) {
	setup := startAPI(t)
	status, err := statusViaHTTP(context.Background(), setup.unit, setup.cfg.Client.BaseURL+"/")
	if err != nil {
		t.Fatalf("statusViaHTTP: %v", err)
	}
	if status.Listings != 3 || status.Products != 4 || !status.Ready {
		t.Errorf("unexpected status: %+v", status)
	}

	var buf bytes.Buffer
	if err := writeStatus(&buf, status, "text"); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"Listings: 3", "Products: 4", "Ready:    true"} {
		if !strings.Contains(buf.String(), sub) {
			t.Errorf("status output missing %q:\n%s", sub, buf.String())
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
