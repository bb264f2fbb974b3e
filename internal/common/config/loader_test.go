package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecrets = `
auth:
  access_secret: "this-is-a-very-long-access-secret-for-testing"
  refresh_secret: "this-is-a-very-long-refresh-secret-for-testing"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apiserver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  shutdown_timeout: 5s
database:
  type: sqlite
  dbname: ":memory:"
auth:
  access_secret: "this-is-a-very-long-access-secret-for-testing"
  refresh_secret: "this-is-a-very-long-refresh-secret-for-testing"
  access_duration: "30m"
rate_limit:
  enabled: true
  requests: 5
  window: 30s
`)

	cfg, gotPath, err := LoadConfig[APIServerConfig](path)
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "30m", cfg.Auth.AccessDuration)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)

	// unset values fall back to defaults
	assert.Equal(t, "7d", cfg.Auth.RefreshDuration)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  type: sqlite\n")

	cfg, _, err := LoadConfig[APIServerConfig](path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "15m", cfg.Auth.AccessDuration)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoadConfigEnvResolution(t *testing.T) {
	t.Setenv("MIGESTION_TEST_PORT", "7070")
	t.Setenv("MIGESTION_TEST_DB", "postgres")

	path := writeConfig(t, `
server:
  port: ${MIGESTION_TEST_PORT}
database:
  type: ${MIGESTION_TEST_DB}
  host: ${MIGESTION_TEST_HOST:localhost}
  sslmode: ${MIGESTION_TEST_SSL:disable}
`)

	cfg, _, err := LoadConfig[APIServerConfig](path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	// unset variables take their inline defaults
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig[APIServerConfig](filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("unsupported database", func(t *testing.T) {
		path := writeConfig(t, "database:\n  type: oracle\n"+testSecrets)
		cfg, _, err := LoadConfig[APIServerConfig](path)
		require.NoError(t, err)
		assert.Error(t, cfg.Validate())
	})

	t.Run("weak secrets", func(t *testing.T) {
		path := writeConfig(t, `
database:
  type: sqlite
auth:
  access_secret: "short"
  refresh_secret: "also-short"
`)
		cfg, _, err := LoadConfig[APIServerConfig](path)
		require.NoError(t, err)
		assert.Error(t, cfg.Validate())
	})

	t.Run("identical secrets", func(t *testing.T) {
		path := writeConfig(t, `
database:
  type: sqlite
auth:
  access_secret: "this-is-a-very-long-access-secret-for-testing"
  refresh_secret: "this-is-a-very-long-access-secret-for-testing"
`)
		cfg, _, err := LoadConfig[APIServerConfig](path)
		require.NoError(t, err)
		assert.Error(t, cfg.Validate())
	})
}

func TestGetDSN(t *testing.T) {
	pg := &DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "app", Password: "pw", DBName: "migestion", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:pw@db:5432/migestion?sslmode=disable", pg.GetDSN())

	my := &DatabaseConfig{Type: "mysql", Host: "db", Port: 3306, User: "app", Password: "pw", DBName: "migestion"}
	assert.Equal(t, "app:pw@tcp(db:3306)/migestion?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	lite := &DatabaseConfig{Type: "sqlite", DBName: "/data/app.db"}
	assert.Equal(t, "/data/app.db", lite.GetDSN())

	assert.Equal(t, "", (&DatabaseConfig{Type: "oracle"}).GetDSN())
}
