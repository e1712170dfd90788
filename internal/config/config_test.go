package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Scrape.DefaultMaxPages)
	assert.Equal(t, 10, cfg.Scrape.MaxResultsPerSource)
	assert.Equal(t, 120, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, "https://api.firecrawl.dev/v1", cfg.Firecrawl.BaseURL)
	assert.Equal(t, "https://s.jina.ai", cfg.Jina.SearchBaseURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 5, cfg.Anthropic.BatchSize)
	assert.Equal(t, "json", cfg.Registry.Driver)
	assert.Equal(t, "outputs/link_registry.json", cfg.Registry.Path)
	assert.Equal(t, "outputs", cfg.Export.Dir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	require.Len(t, cfg.Sources, 4)
	assert.Equal(t, SourceConfig{Name: "google", Enabled: true}, cfg.Sources[0])
	assert.Equal(t, SourceConfig{Name: "jina", Enabled: false}, cfg.Sources[3])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MASS_SERVER_PORT", "9090")
	t.Setenv("MASS_SCRAPE_DEFAULT_MAX_PAGES", "5")
	t.Setenv("MASS_REGISTRY_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scrape.DefaultMaxPages)
	assert.Equal(t, "sqlite", cfg.Registry.Driver)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "console"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
