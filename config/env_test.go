package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersSources(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port": 9000, "mongo_database": "from-json", "mail_tls": true}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("MONGO_DATABASE=from-dotenv\nTOKEN_TTL=90m\n"), 0o600))
	t.Cleanup(func() { _ = loadFromFiles("", "") })
	t.Setenv("TENANT_OVERRIDE", "ANY")

	require.NoError(t, loadFromFiles(jsonPath, envPath))
	require.NoError(t, Load())

	assert.Equal(t, "9000", AppPort())
	assert.Equal(t, "from-dotenv", MongoDatabase())
	assert.Equal(t, 90*time.Minute, TokenTTL())
	assert.True(t, MailTLS())
	assert.Equal(t, "any", TenantOverride())
}

func TestOptionalKeysComeFromEnvironment(t *testing.T) {
	t.Cleanup(func() { _ = loadFromFiles("", "") })
	t.Setenv("RATE_LIMIT", "25")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	require.NoError(t, loadFromFiles("", ""))
	assert.Equal(t, "25", Get("RATE_LIMIT", ""))
	assert.Equal(t, 3*time.Second, Duration("SHUTDOWN_TIMEOUT", time.Second))
}

func TestLoadToleratesMissingFiles(t *testing.T) {
	require.NoError(t, loadFromFiles(filepath.Join(t.TempDir(), "nope.json"), filepath.Join(t.TempDir(), ".env")))
	assert.Equal(t, defaultStoreDriver, StoreDriver())
	assert.Equal(t, "elevated", TenantOverride())
}

func TestTypedFallbacks(t *testing.T) {
	Set("STATS_CACHE_TTL", "not-a-duration")
	Set("LOG_MONGO", "maybe")
	t.Cleanup(func() {
		Set("STATS_CACHE_TTL", "")
		Set("LOG_MONGO", "")
	})

	assert.Equal(t, time.Minute, Duration("STATS_CACHE_TTL", time.Minute))
	assert.False(t, Bool("LOG_MONGO", false))
}
