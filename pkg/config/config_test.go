package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AttuneLearning/cadence-access/pkg/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CADENCE_DEPARTMENT_API_URL", "http://departments.internal")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "http://departments.internal", cfg.Departments.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Departments.Timeout)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.False(t, cfg.Observability.OTelEnabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CADENCE_DEPARTMENT_API_URL", "http://departments.internal")
	t.Setenv("CADENCE_PORT", "8181")
	t.Setenv("CADENCE_REDIS_URL", "redis://localhost:6379")
	t.Setenv("CADENCE_REDIS_DB", "3")
	t.Setenv("CADENCE_LOG_LEVEL", "debug")
	t.Setenv("CADENCE_READ_TIMEOUT", "5s")
	t.Setenv("CADENCE_OTEL_ENABLED", "true")
	t.Setenv("CADENCE_OTEL_ENDPOINT", "collector:4317")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8181", cfg.Server.Port)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Observability.OTelEnabled)
	assert.Equal(t, "collector:4317", cfg.Observability.OTelEndpoint)
}

func TestLoadConfigMissingDepartmentURL(t *testing.T) {
	t.Setenv("CADENCE_DEPARTMENT_API_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "department API URL is required")
}

func TestValidatePortClash(t *testing.T) {
	t.Setenv("CADENCE_DEPARTMENT_API_URL", "http://departments.internal")
	t.Setenv("CADENCE_PORT", "9090")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CADENCE_TEST_BOOL", "1")
	assert.True(t, getEnvBool("CADENCE_TEST_BOOL", false))
	assert.False(t, getEnvBool("CADENCE_TEST_UNSET", false))

	t.Setenv("CADENCE_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvInt("CADENCE_TEST_INT", 7))

	t.Setenv("CADENCE_TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("CADENCE_TEST_DURATION", time.Second))
}
