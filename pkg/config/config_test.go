package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 60*time.Second, cfg.Game.TurnTimeout)
	assert.Equal(t, 5, cfg.Game.ChamberBlanks)
	assert.Equal(t, 1, cfg.Game.ChamberLive)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Gateway.Address)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
gateway:
  address: ":9000"
game:
  min_players: 3
storage:
  backend: memory
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Gateway.Address)
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	// Untouched sections keep defaults.
	assert.Equal(t, ":8080", cfg.Ops.Address)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty gateway address", func(c *Config) { c.Gateway.Address = "" }},
		{"unknown storage backend", func(c *Config) { c.Storage.Backend = "etcd" }},
		{"no live rounds", func(c *Config) { c.Game.ChamberLive = 0 }},
		{"min players below two", func(c *Config) { c.Game.MinPlayers = 1 }},
		{"zero turn timeout", func(c *Config) { c.Game.TurnTimeout = 0 }},
		{"bad mute chance", func(c *Config) {
			c.Moderation.RandomMuteEnabled = true
			c.Moderation.RandomMuteChance = 1.5
		}},
		{"rate limit without rate", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.EventsPerSecond = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFirst_SkipsMissingCandidates(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(present, []byte("ops:\n  address: \":9999\"\n"), 0o644))

	cfg, path, err := LoadFirst(filepath.Join(dir, "absent.yaml"), present)
	require.NoError(t, err)
	assert.Equal(t, present, path)
	assert.Equal(t, ":9999", cfg.Ops.Address)
}

func TestLoadFirst_FallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, path, err := LoadFirst(filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml"))
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, ":8080", cfg.Ops.Address)
}

func TestLoadFirst_SurfacesInvalidFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging:\n  level: \"\"\n"), 0o644))

	_, path, err := LoadFirst(bad)
	assert.Error(t, err)
	assert.Equal(t, bad, path)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WARDEN_GATEWAY_ADDRESS", ":7777")
	t.Setenv("WARDEN_STORAGE_BACKEND", "memory")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Gateway.Address)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}
