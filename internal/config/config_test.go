package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every REPOWATCH_ env var that Load() reads.
var allConfigKeys = []string{
	"REPOWATCH_CONFIG",
	"REPOWATCH_LISTEN_ADDR",
	"REPOWATCH_STORE",
	"REPOWATCH_DB_PATH",
	"REPOWATCH_BOLT_PATH",
	"REPOWATCH_API_BASE_URL",
	"REPOWATCH_REQUEST_TIMEOUT",
	"REPOWATCH_SESSION_TTL",
	"REPOWATCH_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all REPOWATCH_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repowatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "repowatch.db", cfg.DBPath)
	assert.Equal(t, "repowatch.bolt", cfg.BoltPath)
	assert.Equal(t, "https://api.github.com/", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Env(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REPOWATCH_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("REPOWATCH_STORE", "bolt")
	t.Setenv("REPOWATCH_DB_PATH", "/tmp/test.db")
	t.Setenv("REPOWATCH_BOLT_PATH", "/tmp/test.bolt")
	t.Setenv("REPOWATCH_API_BASE_URL", "http://localhost:3000/api/")
	t.Setenv("REPOWATCH_REQUEST_TIMEOUT", "2s")
	t.Setenv("REPOWATCH_SESSION_TTL", "1h")
	t.Setenv("REPOWATCH_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, StoreBolt, cfg.Store)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "/tmp/test.bolt", cfg.BoltPath)
	assert.Equal(t, "http://localhost:3000/api/", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfigFile(t, `
listen_addr = "127.0.0.1:7000"
store = "bolt"
session_ttl = "5m"
log_level = "warn"
`)
	t.Setenv("REPOWATCH_CONFIG", path)
	t.Setenv("REPOWATCH_LOG_LEVEL", "error")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr, "file overrides default")
	assert.Equal(t, StoreBolt, cfg.Store)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelError, cfg.LogLevel, "env overrides file")
	assert.Equal(t, "repowatch.db", cfg.DBPath, "unset keys keep defaults")
}

func TestLoad_ZeroDurationsAllowed(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REPOWATCH_REQUEST_TIMEOUT", "0s")
	t.Setenv("REPOWATCH_SESSION_TTL", "0s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Zero(t, cfg.RequestTimeout)
	assert.Zero(t, cfg.SessionTTL)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "REPOWATCH_STORE", value: "postgres"},
		{key: "REPOWATCH_REQUEST_TIMEOUT", value: "soon"},
		{key: "REPOWATCH_SESSION_TTL", value: "-1m"},
		{key: "REPOWATCH_LOG_LEVEL", value: "verbose"},
		{key: "REPOWATCH_API_BASE_URL", value: "api.github.com"},
		{key: "REPOWATCH_LISTEN_ADDR", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidFileValueNamesKey(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfigFile(t, `request_timeout = "fast"`)
	t.Setenv("REPOWATCH_CONFIG", path)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout")
	assert.Contains(t, err.Error(), path)
}

func TestLoad_UnknownFileKey(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REPOWATCH_CONFIG", writeConfigFile(t, `poll_interval = "5m"`))

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestLoad_MissingFile(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("REPOWATCH_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPOWATCH_CONFIG")
}
