package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) {
	cfg = nil
	t.Cleanup(func() { cfg = nil })
}

// unset clears keys for the test. An empty value would override env-default.
func unset(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	reset(t)
	unset(t, "API_ENV", "PORT", "DATABASE_DRIVER", "ROLE_CACHE_TTL", "RECALC_INTERVAL")

	c := Load()
	assert.Equal(t, "local", c.APIEnv)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.Equal(t, 30*time.Second, c.RoleCacheTTL)
	assert.Equal(t, 15*time.Minute, c.RecalcInterval)
	assert.False(t, IsProd())
	assert.Same(t, c, Load())
}

func TestLoadFromEnv(t *testing.T) {
	reset(t)
	unset(t, "DATABASE_USER", "DATABASE_NAME", "DATABASE_PORT", "DATABASE_SSLMODE", "DATABASE_TIMEZONE")
	t.Setenv("API_ENV", "production")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("DATABASE_PASSWORD", "hunter2")
	t.Setenv("ROLE_CACHE_TTL", "5s")
	t.Setenv("MAINTENANCE_MODE", "true")

	c := Load()
	assert.True(t, IsProd())
	assert.True(t, c.MaintenanceMode)
	assert.Equal(t, 5*time.Second, c.RoleCacheTTL)
	assert.Equal(t, "host=db.internal user=postgres password=hunter2 dbname=taskflow port=5432 sslmode=disable TimeZone=UTC", GetDSN())
}

func TestSetOverridesLoad(t *testing.T) {
	reset(t)
	Set(&Config{APIEnv: "test", JWTSecret: "s"})
	assert.Equal(t, "test", Load().APIEnv)
}
