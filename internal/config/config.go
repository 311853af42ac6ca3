// SPDX-License-Identifier: MIT

// Package config loads the application configuration from an optional YAML
// file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	DataDir       string `yaml:"dataDir"`
	Store         string `yaml:"store"` // memory|badger|file|sqlite|redis
	RedisAddr     string `yaml:"redisAddr"`
	LogLevel      string `yaml:"logLevel"`
	MetricsListen string `yaml:"metricsListen"` // empty disables the metrics endpoint

	FetchDelay      time.Duration `yaml:"fetchDelay"`
	PurchaseDelay   time.Duration `yaml:"purchaseDelay"`
	RecoverDelay    time.Duration `yaml:"recoverDelay"`
	CaptureInterval time.Duration `yaml:"captureInterval"`

	PurchaseSuccessRate float64 `yaml:"purchaseSuccessRate"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DataDir:             "./data",
		Store:               StoreMemory,
		RedisAddr:           "localhost:6379",
		LogLevel:            "info",
		FetchDelay:          700 * time.Millisecond,
		PurchaseDelay:       500 * time.Millisecond,
		RecoverDelay:        700 * time.Millisecond,
		CaptureInterval:     time.Second,
		PurchaseSuccessRate: 0.9,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv applies COURSEKIT_* environment overrides on top of cfg.
func FromEnv(cfg Config) Config {
	cfg.DataDir = ParseString("COURSEKIT_DATA_DIR", cfg.DataDir)
	cfg.Store = ParseString("COURSEKIT_STORE", cfg.Store)
	cfg.RedisAddr = ParseString("COURSEKIT_REDIS_ADDR", cfg.RedisAddr)
	cfg.LogLevel = ParseString("COURSEKIT_LOG_LEVEL", cfg.LogLevel)
	cfg.MetricsListen = ParseString("COURSEKIT_METRICS_LISTEN", cfg.MetricsListen)
	cfg.FetchDelay = ParseDuration("COURSEKIT_FETCH_DELAY", cfg.FetchDelay)
	cfg.PurchaseDelay = ParseDuration("COURSEKIT_PURCHASE_DELAY", cfg.PurchaseDelay)
	cfg.RecoverDelay = ParseDuration("COURSEKIT_RECOVER_DELAY", cfg.RecoverDelay)
	cfg.CaptureInterval = ParseDuration("COURSEKIT_CAPTURE_INTERVAL", cfg.CaptureInterval)
	cfg.PurchaseSuccessRate = ParseFloat("COURSEKIT_PURCHASE_SUCCESS_RATE", cfg.PurchaseSuccessRate)
	return cfg
}

// Validate checks invariants the rest of the system depends on.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreBadger, StoreFile, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.Store == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis store requires redisAddr")
	}
	if c.PurchaseSuccessRate < 0 || c.PurchaseSuccessRate > 1 {
		return fmt.Errorf("purchaseSuccessRate %v out of range [0,1]", c.PurchaseSuccessRate)
	}
	if c.FetchDelay < 0 || c.PurchaseDelay < 0 || c.RecoverDelay < 0 {
		return fmt.Errorf("task delays must be non-negative")
	}
	if c.CaptureInterval <= 0 {
		return fmt.Errorf("captureInterval must be positive")
	}
	return nil
}
