package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "backflow.db", cfg.Store.Path)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "templates/newwa-backflow-form.pdf", cfg.Template.Source)
	assert.Equal(t, 1, cfg.Template.TTLHours)
	assert.False(t, cfg.Capture.Crop)
	assert.Equal(t, ".", cfg.Email.OutputDir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BACKFLOW_ANTHROPIC_KEY", "sk-test")
	t.Setenv("BACKFLOW_ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929")
	t.Setenv("BACKFLOW_TEMPLATE_SOURCE", "https://forms.example.com/newwa.pdf")
	t.Setenv("BACKFLOW_STORE_PATH", "/var/lib/backflow/backflow.db")
	t.Setenv("BACKFLOW_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, "https://forms.example.com/newwa.pdf", cfg.Template.Source)
	assert.Equal(t, "/var/lib/backflow/backflow.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
