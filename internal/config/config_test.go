package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:5000", cfg.RunAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dist/public", cfg.StaticDir)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 15*time.Second, cfg.RemoteTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.ProbeIntervalDuration())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATA_DIR", "/tmp/univmarket-test")
	t.Setenv("REMOTE_TIMEOUT_SECONDS", "3")
	t.Setenv("IMGBB_API_KEY", "k123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddress)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/univmarket-test", cfg.DataDir)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeoutDuration())
	assert.Equal(t, "k123", cfg.ImgBBAPIKey)
}
