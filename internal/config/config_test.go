package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Root)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 10, cfg.Governor.MaxPredictivePerDay)
	assert.Equal(t, 3, cfg.Governor.MaxPredictivePerJourney)
	assert.Equal(t, 365, cfg.History.RetentionDays)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 9180, cfg.Server.Port)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
root: /tmp/llkb-test
logging:
  level: debug
  format: json
governor:
  max_predictive_per_day: 5
history:
  retention_days: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/llkb-test", cfg.Root)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Governor.MaxPredictivePerDay)
	assert.Equal(t, 30, cfg.History.RetentionDays)
	// Untouched sections keep defaults.
	assert.Equal(t, 3, cfg.Governor.MaxPredictivePerJourney)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	t.Setenv("LLKB_LOGGING_LEVEL", "error")
	t.Setenv("LLKB_GOVERNOR_MAX_PREDICTIVE_PER_DAY", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Governor.MaxPredictivePerDay)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"negative daily limit", "governor:\n  max_predictive_per_day: -1\n"},
		{"negative retention", "history:\n  retention_days: -3\n"},
		{"port out of range", "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
