package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFromFile(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 8081
jwt:
  secret: from-file
db:
  driver: postgres
  dsn: postgres://localhost/users
redis:
  addr: localhost:6379
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 8081, c.App.HTTP.Port)
	assert.Equal(t, "from-file", c.JWT.Secret)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 60, c.JWT.AccessTokenTTLMin)
	assert.Equal(t, "US", c.Validation.PhoneRegion)
}

func TestLoadEnvAliases(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "5000")
	t.Setenv("JWT_SECRET", "from-env")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit path must exist")

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 5000, c.App.HTTP.Port)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, ":memory:", c.DB.DSN)
}

func TestLoadPrefixedEnvOverridesFile(t *testing.T) {
	p := writeYAML(t, "app:\n  http:\n    port: 8081\njwt:\n  secret: from-file\n")
	t.Setenv("APP_JWT_SECRET", "override")
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "override", c.JWT.Secret)
}

func TestValidateRequiresPortAndSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}
