// Package config provides configuration loading and structs for the vitrina server and client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Mock    MockConfig    `yaml:"mock"`
	Client  ClientConfig  `yaml:"client"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the catalog database and keyword index.
// An empty BleveIndexPath keeps the keyword index in memory.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// MockConfig controls how the mock API simulates a real backend.
type MockConfig struct {
	// StartupDelay is the warm-up gap during which /api/* answers the HTML shell.
	StartupDelay  time.Duration `yaml:"startup_delay"`
	SearchLatency time.Duration `yaml:"search_latency"`
	ItemLatency   time.Duration `yaml:"item_latency"`
	// FailureRate is the probability of a simulated 500 on search. Negative disables it.
	FailureRate   float64 `yaml:"failure_rate"`
	FixturesPath  string  `yaml:"fixtures_path"`
	WatchFixtures bool    `yaml:"watch_fixtures"`
	// SpellCorrection retries an empty search with the closest indexed terms.
	SpellCorrection bool `yaml:"spell_correction"`
	// FuzzyFallback retries an empty search with fuzzy term matching.
	FuzzyFallback bool `yaml:"fuzzy_fallback"`
}

// ClientConfig holds the fetch unit and fetcher settings.
type ClientConfig struct {
	BaseURL     string        `yaml:"base_url"`
	MaxRetries  int           `yaml:"max_retries"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Timeout     time.Duration `yaml:"timeout"`
	SearchLimit int           `yaml:"search_limit"`
}

// Addr returns host:port for the HTTP listener.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Mock.FixturesPath = expandPath(cfg.Mock.FixturesPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths and ":memory:" are kept.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
