package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{"APP_ENV", "DB_PATH", "PORT", "ADMIN_API_KEY", "LOG_LEVEL", "LOG_FORMAT", "CATALOG_CACHE_TTL"}

// clearEnv unsets keys for the test; godotenv skips variables that exist
// even when empty.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "./dev.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.True(t, cfg.IsDev())
}

func TestLoad_ReadsDotEnvWithoutOverwriting(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	clearEnv(t)
	t.Setenv("PORT", "9090")

	content := []byte(`
# comment
export DB_PATH=/tmp/frames.db
PORT=7070
APP_ENV="prod"
CATALOG_CACHE_TTL=30s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), content, 0o600))

	cfg := Load()

	assert.Equal(t, "/tmp/frames.db", cfg.DBPath)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
}

func TestLoad_InvalidTTLFallsBack(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("CATALOG_CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
}

// chdir changes the working directory for the test and restores it on
// cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
