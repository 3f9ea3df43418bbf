package config

import "time"

// Defaults mirrored by the fetchers when no config file is present.
const (
	DefaultMaxRetries  = 3
	DefaultBaseDelay   = 200 * time.Millisecond
	DefaultSearchLimit = 10
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/vitrina/data/catalog.db"
	}
	if cfg.Mock.SearchLatency == 0 {
		cfg.Mock.SearchLatency = 800 * time.Millisecond
	}
	if cfg.Mock.ItemLatency == 0 {
		cfg.Mock.ItemLatency = 500 * time.Millisecond
	}
	if cfg.Mock.FailureRate == 0 {
		cfg.Mock.FailureRate = 0.05
	}
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://" + cfg.Server.Addr()
	}
	if cfg.Client.MaxRetries == 0 {
		cfg.Client.MaxRetries = DefaultMaxRetries
	}
	if cfg.Client.BaseDelay == 0 {
		cfg.Client.BaseDelay = DefaultBaseDelay
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 30 * time.Second
	}
	if cfg.Client.SearchLimit == 0 {
		cfg.Client.SearchLimit = DefaultSearchLimit
	}
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
