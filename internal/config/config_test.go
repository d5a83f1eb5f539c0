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
	t.Setenv("APP_ENV", "production") // skip .env lookup
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "*", cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.IncomingCallDelay)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Empty(t, cfg.AI.APIKey)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server_addr: \":9000\"\n"+
			"ai_model: gemini-2.0-pro\n"+
			"incoming_call_delay: 0\n",
	), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg := Load()
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "gemini-2.0-pro", cfg.AI.Model)
	assert.Zero(t, cfg.IncomingCallDelay)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10000, cfg.MaxWSConnections)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: \":9000\"\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("GEMINI_MODEL", "gemini-exp")

	cfg := Load()
	assert.Equal(t, ":7000", cfg.ServerAddr)
	assert.Equal(t, "gemini-exp", cfg.AI.Model)
}

func TestAPIKeyFallbackName(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("API_KEY", "legacy-key")

	cfg := Load()
	assert.Equal(t, "legacy-key", cfg.AI.APIKey)

	t.Setenv("GEMINI_API_KEY", "primary-key")
	cfg = Load()
	assert.Equal(t, "primary-key", cfg.AI.APIKey)
}

func TestLoadEnvFromParsing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"# comment\n"+
			"\n"+
			"PLAIN=value\n"+
			"QUOTED=\"with spaces\"\n"+
			"SINGLE='single'\n"+
			"=nokey\n"+
			"broken\n",
	), 0o600))

	t.Setenv("PLAIN", "")
	t.Setenv("QUOTED", "")
	t.Setenv("SINGLE", "")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	loadEnvFrom(f)

	assert.Equal(t, "value", os.Getenv("PLAIN"))
	assert.Equal(t, "with spaces", os.Getenv("QUOTED"))
	assert.Equal(t, "single", os.Getenv("SINGLE"))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SOME_STR", "x")
	assert.Equal(t, "x", envStr("SOME_STR", "fb"))
	assert.Equal(t, "fb", envStr("SOME_STR_MISSING", "fb"))

	t.Setenv("SOME_INT", "42")
	assert.Equal(t, 42, envInt("SOME_INT", 7))
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 7, envInt("SOME_INT", 7))
	assert.Equal(t, 7, envInt("SOME_INT_MISSING", 7))
}
