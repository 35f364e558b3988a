package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DATABASE", "rentals")
	t.Setenv("DB_USER", "rentals")
	t.Setenv("AUTHZ_URL", "http://authorizer:8080/")
	t.Setenv("AUTHZ_CLIENT_ID", "client")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, 10, cfg.DBConnectionLimit)
	assert.Equal(t, "http://authorizer:8080", cfg.AuthzURL, "trailing slash is trimmed")
	assert.Equal(t, 15*time.Minute, cfg.S3PresignExpires)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTHZ_CLIENT_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTHZ_CLIENT_ID")
}

func TestLoad_SQLiteNeedsNoUser(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_USER", "")
	t.Setenv("DB_TYPE", "sqlite-nocgo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsSQLite())
}

func TestLoad_EnvFile(t *testing.T) {
	setRequired(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RENTALS_TEST_ONLY=1\nS3_BUCKET=documents\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() {
		os.Unsetenv("RENTALS_TEST_ONLY")
		os.Unsetenv("S3_BUCKET")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.StorageEnabled())
	assert.Equal(t, "documents", cfg.S3Bucket)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("RENTALS_INT", "nope")
	t.Setenv("RENTALS_DURATION", "2s")

	assert.Equal(t, 7, getEnvAsInt("RENTALS_INT", 7))
	assert.Equal(t, 2*time.Second, getEnvAsDuration("RENTALS_DURATION", time.Minute))
	assert.Equal(t, "fallback", getEnv("RENTALS_UNSET", "fallback"))
}
