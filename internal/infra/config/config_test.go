package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, ":8307", cfg.Server.Addr)
	assert.Nil(t, cfg.Engine.WaitForBuffer)
	assert.True(t, cfg.EngineOptions().WaitForBuffer)
	assert.Equal(t, 15, cfg.Engine.MinBufferSec)
	assert.Equal(t, 2500, cfg.Engine.PlayBufferMs)
	assert.Equal(t, 30, cfg.Engine.BackBufferSec)
	assert.Equal(t, 50, cfg.Engine.MaxCacheMB)
	assert.Equal(t, 3, cfg.Playback.PreviousRestartThresholdSec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.False(t, cfg.Catalog.Enabled)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
engine:
  min_buffer_sec: 20
  max_cache_mb: 100
playback:
  previous_restart_threshold_sec: 5
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Engine.MinBufferSec)
	assert.Equal(t, 100, cfg.Engine.MaxCacheMB)
	// Unset fields keep their defaults.
	assert.Equal(t, 2500, cfg.Engine.PlayBufferMs)
	assert.Equal(t, 5, cfg.Playback.PreviousRestartThresholdSec)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadWaitForBufferFalseSurvivesDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  wait_for_buffer: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Engine.WaitForBuffer)
	assert.False(t, *cfg.Engine.WaitForBuffer)
	assert.False(t, cfg.EngineOptions().WaitForBuffer)
	// Surrounding fields still pick up their defaults.
	assert.Equal(t, 15, cfg.Engine.MinBufferSec)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "engine: [broken")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "buffer out of range",
			content: "engine:\n  min_buffer_sec: 500\n",
			wantErr: true,
		},
		{
			name:    "bad log level",
			content: "log:\n  level: loud\n",
			wantErr: true,
		},
		{
			name:    "catalog enabled without credentials",
			content: "catalog:\n  enabled: true\n",
			wantErr: true,
		},
		{
			name:    "catalog market must be two letters",
			content: "catalog:\n  market: USA\n",
			wantErr: true,
		},
		{
			name: "catalog fully configured",
			content: `catalog:
  enabled: true
  client_id: id
  client_secret: secret
  refresh_token: token
  market: US
`,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "config validation failed")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CATALOG_CLIENT_ID", "env-id")
	t.Setenv("CATALOG_CLIENT_SECRET", "env-secret")
	t.Setenv("CATALOG_REFRESH_TOKEN", "env-token")

	path := writeConfig(t, `
catalog:
  enabled: true
  client_id: file-id
  client_secret: file-secret
  refresh_token: file-token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Catalog.ClientID)
	assert.Equal(t, "env-secret", cfg.Catalog.ClientSecret)
	assert.Equal(t, "env-token", cfg.Catalog.RefreshToken)
}

func TestEngineOptions(t *testing.T) {
	f := false
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Engine.MinBufferSec = 20
	cfg.Engine.PlayBufferMs = 1000
	cfg.Engine.BackBufferSec = 60
	cfg.Engine.MaxCacheMB = 100
	cfg.Engine.ContinueInBackground = &f

	opts := cfg.EngineOptions()
	assert.Equal(t, 20*time.Second, opts.MinBuffer)
	assert.Equal(t, time.Second, opts.PlayBuffer)
	assert.Equal(t, 60*time.Second, opts.BackBuffer)
	assert.Equal(t, int64(100*1024*1024), opts.MaxCacheSize)
	assert.False(t, opts.ContinueInBackground)
	// Unset pointer fields keep the engine default.
	assert.True(t, opts.WaitForBuffer)
	assert.True(t, opts.StopOnAppKilled)
	assert.NotEmpty(t, opts.Capabilities)
}

func TestPreviousRestartThreshold(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.PreviousRestartThreshold())
}
