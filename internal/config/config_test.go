package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "SERVER_CORS_ORIGINS", "PLANNER_MAX_PASSENGERS", "PLANNER_NEAREST_DRIVERS_LIMIT", "MAPS_MAX_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.Equal(t, 3, cfg.Planner.MaxPassengers)
	assert.Equal(t, 7, cfg.Planner.NearestDriversLimit)
	assert.Equal(t, 2, cfg.Maps.MaxRetries)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PLANNER_MAX_PASSENGERS", "4")
	t.Setenv("PLANNER_ROUTE_LOCK_TTL", "1m")
	t.Setenv("NEW_RELIC_ENABLED", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 4, cfg.Planner.MaxPassengers)
	assert.Equal(t, time.Minute, cfg.Planner.RouteLockTTL)
	assert.True(t, cfg.NewRelic.Enabled)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
}

func TestValidate(t *testing.T) {
	t.Setenv("NEW_RELIC_ENABLED", "")
	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.Planner.MaxPassengers = 0
	cfg.Maps.MaxRetries = -1
	cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1
	cfg.NewRelic.Enabled = true
	cfg.NewRelic.LicenseKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner.max_passengers")
	assert.Contains(t, err.Error(), "maps.max_retries")
	assert.Contains(t, err.Error(), "database.max_idle_conns")
	assert.Contains(t, err.Error(), "new_relic.license_key")
}
