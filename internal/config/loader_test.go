package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tppkitchen/backoffice/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := config.Load(config.LoaderOptions{})

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "55s", cfg.Server.RequestTimeout)

	assert.Equal(t, "45s", cfg.HTTP.Timeout)
	assert.Equal(t, 2, cfg.HTTP.MaxRetries)
	assert.Equal(t, "1s", cfg.HTTP.InitialBackoff)
	assert.Equal(t, "8s", cfg.HTTP.MaxBackoff)
	assert.Equal(t, 2.0, cfg.HTTP.BackoffMultiplier)

	assert.Equal(t, 0.2, cfg.Nutrition.Temperature)
	assert.Equal(t, 512, cfg.Nutrition.MaxOutputTokens)
	assert.Equal(t, 0.15, cfg.Nutrition.HighDeviation)
	assert.Equal(t, 0.30, cfg.Nutrition.MediumDeviation)

	assert.True(t, cfg.Store.Enabled)
	assert.NotEmpty(t, cfg.Store.Path)

	assert.True(t, cfg.Observability.Logging.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.True(t, cfg.Observability.Logging.RedactAPIKeys)
	assert.True(t, cfg.Observability.Metrics.Enabled)

	require.Contains(t, cfg.Providers, "claude")
	require.Contains(t, cfg.Providers, "gemini")
	assert.True(t, cfg.Providers["claude"].Enabled)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Providers["claude"].Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.Providers["gemini"].Model)
}

func TestLoad_ExpandsAPIKeysFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key")
	t.Setenv("GEMINI_API_KEY", "AIza-test-key")

	cfg, err := config.Load(config.LoaderOptions{})

	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test-key", cfg.Providers["claude"].APIKey)
	assert.Equal(t, "AIza-test-key", cfg.Providers["gemini"].APIKey)
}

func TestLoad_UnsetCredentialReadsAsAbsent(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := config.Load(config.LoaderOptions{})

	require.NoError(t, err)
	// An unset ${VAR} must not leak the placeholder into the key field;
	// an empty key is how provider wiring detects a missing credential.
	assert.Empty(t, cfg.Providers["claude"].APIKey)
	assert.Empty(t, cfg.Providers["gemini"].APIKey)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	contents := `
server:
  address: ":9090"
  requestTimeout: "30s"
nutrition:
  highDeviation: 0.10
  mediumDeviation: 0.25
providers:
  gemini:
    enabled: false
store:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backoffice.yaml"), []byte(contents), 0644))

	cfg, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "30s", cfg.Server.RequestTimeout)
	assert.Equal(t, 0.10, cfg.Nutrition.HighDeviation)
	assert.Equal(t, 0.25, cfg.Nutrition.MediumDeviation)
	assert.False(t, cfg.Providers["gemini"].Enabled)
	assert.False(t, cfg.Store.Enabled)

	// Untouched settings keep their defaults.
	assert.Equal(t, "45s", cfg.HTTP.Timeout)
	assert.True(t, cfg.Providers["claude"].Enabled)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backoffice.yaml"), []byte("server: [not: valid"), 0644))

	_, err := config.Load(config.LoaderOptions{ConfigPaths: []string{dir}})

	assert.Error(t, err)
}
