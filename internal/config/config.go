// Package config provides configuration loading for llkb.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/llkb/internal/history"
)

// Config is the full llkb configuration.
type Config struct {
	// Root is the knowledge root directory. All stores (learned patterns,
	// lessons, components, analytics, history) live under it. The value
	// is threaded explicitly through every entry point so multiple roots
	// can coexist in one process.
	Root string `koanf:"root"`

	Logging  LoggingConfig  `koanf:"logging"`
	Governor GovernorConfig `koanf:"governor"`
	History  HistoryConfig  `koanf:"history"`
	Server   ServerConfig   `koanf:"server"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// GovernorConfig holds the rate-governance ceilings. A negative value is
// invalid; zero falls back to the default ceiling.
type GovernorConfig struct {
	MaxPredictivePerDay     int `koanf:"max_predictive_per_day"`
	MaxPredictivePerJourney int `koanf:"max_predictive_per_journey"`
}

// HistoryConfig configures the event log.
type HistoryConfig struct {
	RetentionDays int `koanf:"retention_days"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// applyDefaults fills unset fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Root = filepath.Join(home, ".llkb")
		} else {
			cfg.Root = ".llkb"
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Governor.MaxPredictivePerDay == 0 {
		cfg.Governor.MaxPredictivePerDay = 10
	}
	if cfg.Governor.MaxPredictivePerJourney == 0 {
		cfg.Governor.MaxPredictivePerJourney = 3
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = history.DefaultRetentionDays
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9180
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root directory cannot be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	if c.Governor.MaxPredictivePerDay < 0 {
		return fmt.Errorf("governor max_predictive_per_day cannot be negative")
	}
	if c.Governor.MaxPredictivePerJourney < 0 {
		return fmt.Errorf("governor max_predictive_per_journey cannot be negative")
	}
	if c.History.RetentionDays < 1 {
		return fmt.Errorf("history retention_days must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}
