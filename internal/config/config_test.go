package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woneiros/travel-planner/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3600, cfg.Session.TTLSeconds)
	assert.Equal(t, time.Hour, cfg.Session.TTL())
	assert.Equal(t, 5*time.Minute, cfg.Session.ReapInterval)
	assert.Equal(t, 10, cfg.Ingest.MaxURLs)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.Equal(t, "gpt-4o", cfg.LLM.OpenAI.Model)
	assert.InDelta(t, 0.7, cfg.LLM.OpenAI.Temperature, 1e-9)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Anthropic.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Anthropic.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Telemetry.Langfuse.Configured())
	assert.Equal(t, "https://cloud.langfuse.com", cfg.Telemetry.Langfuse.Host)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SESSION_TTL_SECONDS", "120")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Session.TTL())
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 9090
llm:
  default_provider: anthropic
redis:
  enabled: true
  host: cache.internal
youtube:
  languages: [en, fr]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"en", "fr"}, cfg.YouTube.Languages)
}
