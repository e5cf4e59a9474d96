package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("ED_USERNAME", "jdupont")
	t.Setenv("ED_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ecoledirecte-go", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, "Europe/Paris", cfg.App.Timezone)
	require.NotNil(t, cfg.App.Location)

	assert.Equal(t, "https://api.ecoledirecte.com/v3", cfg.Provider.BaseURL)
	assert.Equal(t, "4.55.0", cfg.Provider.APIVersion)
	assert.Equal(t, "jdupont", cfg.Provider.Username)
	assert.Equal(t, 120*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, float64(1), cfg.Provider.RateLimit)
	assert.Equal(t, 3, cfg.Provider.RateLimitBurst)
	assert.False(t, cfg.Provider.Debug)

	assert.Equal(t, StoreFile, cfg.ChallengeStore.Backend)
	assert.Equal(t, "qcm.json", cfg.ChallengeStore.File)
	assert.Equal(t, BusMemory, cfg.EventBus.Backend)
	assert.Equal(t, "ecoledirecte:events", cfg.EventBus.Channel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("ED_USERNAME", "")
	t.Setenv("ED_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ED_USERNAME is required")
	assert.Contains(t, err.Error(), "ED_PASSWORD is required")
}

func TestLoadRejectsUnknownStoreBackend(t *testing.T) {
	setCredentials(t)
	t.Setenv("ED_QCM_STORE", "bolt")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ED_QCM_STORE")
}

func TestLoadPostgresStoreRequiresDatabaseURL(t *testing.T) {
	setCredentials(t)
	t.Setenv("ED_QCM_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://ed:ed@localhost:5432/ecoledirecte")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.ChallengeStore.Backend)
}

func TestLoadRejectsUnknownBusBackend(t *testing.T) {
	setCredentials(t)
	t.Setenv("ED_EVENT_BUS", "kafka")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ED_EVENT_BUS")
}

func TestLoadReadsOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("ED_BASE_URL", "https://staging.ecoledirecte.example/v3")
	t.Setenv("ED_TIMEOUT", "30s")
	t.Setenv("ED_RATE_LIMIT", "0.5")
	t.Setenv("ED_DEBUG", "true")
	t.Setenv("ED_QCM_FILE", "/var/lib/ed/qcm.json")
	t.Setenv("ED_EVENT_BUS", "redis")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_PORT", "9105")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://staging.ecoledirecte.example/v3", cfg.Provider.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 0.5, cfg.Provider.RateLimit)
	assert.True(t, cfg.Provider.Debug)
	assert.Equal(t, "/var/lib/ed/qcm.json", cfg.ChallengeStore.File)
	assert.Equal(t, BusRedis, cfg.EventBus.Backend)
	assert.Equal(t, "redis.internal", cfg.Redis.Host)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, 9105, cfg.Observability.MetricsPort)
}

func TestLoadKeepsDefaultsOnUnparsableValues(t *testing.T) {
	setCredentials(t)
	t.Setenv("ED_TIMEOUT", "four minutes")
	t.Setenv("ED_RATE_LIMIT_BURST", "abc")
	t.Setenv("ED_EVENT_ASYNC", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 3, cfg.Provider.RateLimitBurst)
	assert.True(t, cfg.EventBus.Async)
}

func TestLoadFallsBackToUTCOnBadTimezone(t *testing.T) {
	setCredentials(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, cfg.App.Location)
}
