package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 9871, c.Server.Port)
	assert.Equal(t, DriverSQLite, c.Database.Driver)
	assert.Equal(t, 150, c.AIUsage.MaxCallsPerMonth)
	assert.Equal(t, 10, c.AIUsage.MinSecondsBetweenCalls)
	assert.Equal(t, 10*time.Second, c.MinAIInterval())
	assert.Equal(t, ":9871", c.Addr())
	assert.NoError(t, c.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 8080
database:
  driver: mysql
  host: db.internal
  name: tt
ai_usage:
  max_calls_per_month: 20
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("AI_MIN_SECONDS_BETWEEN_CALLS", "3")
	t.Setenv("DB_HOST", "db.override")

	c := Load(path)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, DriverMySQL, c.Database.Driver)
	assert.Equal(t, "db.override", c.Database.Host)
	assert.Equal(t, 20, c.AIUsage.MaxCallsPerMonth)
	assert.Equal(t, 3, c.AIUsage.MinSecondsBetweenCalls)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"mysql without host", func(c *Config) { c.Database.Driver = DriverMySQL; c.Database.Host = "" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"negative quota", func(c *Config) { c.AIUsage.MaxCallsPerMonth = -1 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "abc" }, true},
		{"zero interval allowed", func(c *Config) { c.AIUsage.MinSecondsBetweenCalls = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Load(filepath.Join(t.TempDir(), "none.yaml"))
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRedisClient_Disabled(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "none.yaml"))
	rdb, err := c.NewRedisClient(t.Context())
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
