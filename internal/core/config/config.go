package config

import (
	"time"

	redisclient "github.com/vietddude/noncegap/internal/infra/redis"
	"github.com/vietddude/noncegap/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Chain    ChainConfig        `yaml:"chain"`
	Watch    WatchConfig        `yaml:"watch"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ChainConfig identifies the execution-layer chain and its RPC endpoints.
type ChainConfig struct {
	ID        string           `yaml:"id"`
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for an RPC provider.
type ProviderConfig struct {
	Name       string        `yaml:"name"`
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	DailyQuota int           `yaml:"daily_quota"` // 0 = unlimited
}

// WatchConfig holds settings for the polling monitor.
type WatchConfig struct {
	Addresses  []string      `yaml:"addresses"`
	Interval   time.Duration `yaml:"interval"`
	HistoryTTL time.Duration `yaml:"history_ttl"` // TTL for cached last reports
}
