package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Scrape.Concurrency)
	assert.Equal(t, "auto", cfg.Scrape.Mode)
	assert.True(t, cfg.HTTP.VerifySSL)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.True(t, cfg.Headless.Enabled)
	assert.False(t, cfg.Headless.Visible)
	assert.Equal(t, 120, cfg.Cache.TTLSeconds)
	assert.Equal(t, 2*time.Minute, cfg.TTL())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 800*time.Millisecond, cfg.BackoffBase())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := `
server:
  port: 9090
scrape:
  mode: direct
  concurrency: 2
cache:
  ttl_seconds: 60
targets:
  - name: "UPA Teste"
    url: "http://upa.test/teste"
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "direct", cfg.Scrape.Mode)
	assert.Equal(t, 2, cfg.Scrape.Concurrency)
	assert.Equal(t, time.Minute, cfg.TTL())

	targets := cfg.ResolveTargets()
	require.Len(t, targets, 1)
	assert.Equal(t, "UPA Teste", targets[0].Name)
	assert.Equal(t, "http://upa.test/teste", targets[0].URL)
}

func TestResolveTargetsFallsBackToRegistry(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ResolveTargets())
}

func TestValidateRejections(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Scrape.Mode = "turbo"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.TTLSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Targets = []TargetConfig{{Name: "X", URL: ""}}
	assert.Error(t, cfg.Validate())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("UPA_SERVER_PORT", "7070")
	t.Setenv("UPA_SCRAPE_MODE", "rendered")
	t.Setenv("UPA_HEADLESS_VISIBLE", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "rendered", cfg.Scrape.Mode)
	assert.True(t, cfg.Headless.Visible)
}
