package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `serverAddr: ":8080"
auth:
  accessTokenSecret: access-secret
  refreshTokenSecret: refresh-secret
postgres:
  host: localhost
  port: "5432"
  dbname: annotation
  user: annotation
  password: hunter2
  sslmode: disable
  timeZone: UTC
`

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))

	var conf Config
	require.NoError(t, readConfig(path, &conf))
	assert.Equal(t, ":8080", conf.ServerAddr)
	assert.Equal(t, "access-secret", conf.Auth.AccessTokenSecret)
	assert.Equal(t, "annotation", conf.Postgres.DBName)
	assert.Equal(t, "disable", conf.Postgres.SSLMode)
}

func TestReadConfigMissingFile(t *testing.T) {
	var conf Config
	assert.Error(t, readConfig(filepath.Join(t.TempDir(), "nope.yaml"), &conf))
}

func TestGetConfigAppliesTokenDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))
	t.Setenv("ANNOTATION_DEBUG_CONFIG_PATH", path)

	conf := GetConfig()
	assert.Equal(t, 1, conf.Auth.AccessTokenExpiryHour)
	assert.Equal(t, 168, conf.Auth.RefreshTokenExpiryHour)
}
