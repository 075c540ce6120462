package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	for _, key := range []string{"BACKEND_BASE_URL", "BACKEND_CHAT_PATH", "STORAGE_BACKEND", "DB_DRIVER", "APP_PORT", "RABBITMQ_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBackendBaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, "/chat", cfg.Backend.ChatPath)
	assert.Equal(t, StorageDatabase, cfg.Storage.Backend)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr())
	assert.True(t, cfg.NeedsDatabase())
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
base_url = "http://advising.example.edu:8000/"
chat_path = "/api/chat"

[storage]
backend = "memory"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://advising.example.edu:8000", cfg.Backend.BaseURL)
	assert.Equal(t, "/api/chat", cfg.Backend.ChatPath)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, 9090, cfg.App.Port)

	t.Setenv("BACKEND_BASE_URL", "https://api.example.edu")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.edu", cfg.Backend.BaseURL)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORAGE_BACKEND=redis\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Cleanup(func() { _ = os.Unsetenv("STORAGE_BACKEND") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
}

func TestResolveBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBackendBaseURL, ResolveBaseURL(""))
	assert.Equal(t, DefaultBackendBaseURL, ResolveBaseURL("   "))
	assert.Equal(t, "http://x:1", ResolveBaseURL("http://x:1///"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.App.Port = 0 }},
		{name: "bad url", mutate: func(c *Config) { c.Backend.BaseURL = "localhost:5000" }},
		{name: "bad storage", mutate: func(c *Config) { c.Storage.Backend = "etcd" }},
		{name: "bad driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
	assert.NoError(t, defaultConfig().Validate())
}
