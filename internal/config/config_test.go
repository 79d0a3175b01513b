package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_HOST", "localhost")
	t.Setenv("DATABASE_DBNAME", "nugulmap")
	t.Setenv("DATABASE_USER", "postgres")
}

func TestLoad_DefaultsFromEnvOnly(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "nugulmap-api", cfg.JWT.Issuer)
	assert.Equal(t, "https://kapi.kakao.com", cfg.Kakao.BaseURL)
	assert.Equal(t, "kakao.com", cfg.Kakao.EmailDomain)
	assert.Equal(t, 5, cfg.Kakao.TimeoutSec)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationsPath)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAKAO_TIMEOUT_SEC", "3")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: "9090"
kakao:
  base_url: "http://kakao.local"
  timeout_sec: 7
redis:
  addr: "localhost:6379"
rate_limit:
  login_max_requests: 3
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://kakao.local", cfg.Kakao.BaseURL)
	assert.Equal(t, 3, cfg.Kakao.TimeoutSec, "env wins over file")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.RateLimit.LoginMaxRequests)
}

func TestLoad_MissingFileIsNotFatal(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
}

func TestLoad_RequiresSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RequiresDatabase(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_HOST", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_HOST")
}

func TestLoadDatabase_ValidatesOnlyDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KAKAO_BASE_URL", "")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_DBNAME", "nugulmap")
	t.Setenv("DATABASE_USER", "migrator")

	cfg, err := LoadDatabase("")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "file://migrations", cfg.Database.MigrationsPath)

	_, err = Load("")
	assert.Error(t, err, "the API server still requires the secret")
}

func TestLoadDatabase_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_HOST", "")
	t.Setenv("DATABASE_DBNAME", "nugulmap")
	t.Setenv("DATABASE_USER", "migrator")

	_, err := LoadDatabase("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_HOST")
}

func TestPostgresConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "db", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=db sslmode=disable", d.PostgresConnectionString())
}
