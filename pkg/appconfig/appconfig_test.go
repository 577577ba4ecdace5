package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Strict)
	assert.True(t, cfg.Backup)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Empty(t, cfg.MetricsFile)
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("FILSWAP_STRICT", "true")
	t.Setenv("FILSWAP_LOCK_TIMEOUT", "250ms")
	t.Setenv("FILSWAP_METRICS_FILE", "/var/lib/node_exporter/filswap.prom")

	cfg, err := Parse("")
	require.NoError(t, err)

	assert.True(t, cfg.Strict)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, "/var/lib/node_exporter/filswap.prom", cfg.MetricsFile)
}

func TestParseEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FILSWAP_LOG_FORMAT=json\nFILSWAP_BACKUP=false\n"), 0o644))

	// t.Setenv restores the variables godotenv sets once the test ends
	t.Setenv("FILSWAP_LOG_FORMAT", "")
	os.Unsetenv("FILSWAP_LOG_FORMAT")
	t.Setenv("FILSWAP_BACKUP", "")
	os.Unsetenv("FILSWAP_BACKUP")

	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Backup)
}

func TestParseMissingEnvFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestParseInvalidDuration(t *testing.T) {
	t.Setenv("FILSWAP_LOCK_TIMEOUT", "soon")

	_, err := Parse("")
	assert.Error(t, err)
}
