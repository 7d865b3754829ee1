package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Chain.ID == "" {
		cfg.Chain.ID = "ethereum"
	}
	if cfg.Watch.Interval == 0 {
		cfg.Watch.Interval = 10 * time.Second
	}
	if cfg.Watch.HistoryTTL == 0 {
		cfg.Watch.HistoryTTL = 24 * time.Hour
	}
	for i := range cfg.Chain.Providers {
		if cfg.Chain.Providers[i].Timeout == 0 {
			cfg.Chain.Providers[i].Timeout = 30 * time.Second
		}
	}
}
