package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces llkb environment variables.
const envPrefix = "LLKB_"

// Load builds the configuration from a YAML file and environment
// variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (LLKB_GOVERNOR_MAX_PREDICTIVE_PER_DAY, ...)
//  2. YAML config file (the configPath argument; skipped when empty or
//     absent)
//  3. Hardcoded defaults
//
// Environment variables map to config keys by stripping the LLKB_ prefix,
// lowercasing, and splitting section from field on the first underscore:
//
//	LLKB_ROOT                   -> root
//	LLKB_LOGGING_LEVEL          -> logging.level
//	LLKB_HISTORY_RETENTION_DAYS -> history.retention_days
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
