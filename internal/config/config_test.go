package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/memory?sslmode=disable")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_EXPIRATION", "2h")
	t.Setenv("PORT", "8081")
	t.Setenv("SSE_HEARTBEAT", "5s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/memory?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Second, cfg.Live.Heartbeat)
	assert.Equal(t, 16, cfg.Live.Buffer)
	assert.Equal(t, "ap-northeast-2", cfg.Storage.Region)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Empty(t, cfg.OpenAI.APIKey)
	assert.Equal(t, 15*time.Second, cfg.OpenAI.Timeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "database_url: postgres://file/db\njwt_secret: from-file\naws_bucket_name: memories\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.Database.URL)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "memories", cfg.Storage.Bucket)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/memory")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
