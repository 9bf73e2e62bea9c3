package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig, *cfg)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("BANDWIRE_SERVER_ADDRESS", "0.0.0.0:9999")
	t.Setenv("BANDWIRE_CLIENT_TIMEOUT", "2s")
	t.Setenv("BANDWIRE_CLIENT_ATTEMPTS", "3")
	t.Setenv("BANDWIRE_STORE_PATH", "/tmp/bands.db")
	t.Setenv("BANDWIRE_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Address)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 3, cfg.Client.Attempts)
	assert.Equal(t, "/tmp/bands.db", cfg.Store.Path)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandwire.yaml")
	content := `
server:
  address: ":4000"
client:
  address: "10.0.0.2:4000"
  timeout: 250ms
store:
  path: data.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Server.Address)
	assert.Equal(t, "10.0.0.2:4000", cfg.Client.Address)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.Timeout)
	assert.Equal(t, DefaultClientAttempts, cfg.Client.Attempts)
	assert.Equal(t, "data.db", cfg.Store.Path)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bandwire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client:\n  attempts: 4\n"), 0o644))
	t.Setenv("BANDWIRE_CLIENT_ATTEMPTS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Client.Attempts)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero attempts", "BANDWIRE_CLIENT_ATTEMPTS", "0"},
		{"negative timeout", "BANDWIRE_CLIENT_TIMEOUT", "-1s"},
		{"unknown log level", "BANDWIRE_LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}
