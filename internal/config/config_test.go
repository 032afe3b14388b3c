package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ORGDIR_PRIMARY__ENV", "development")
	t.Setenv("ORGDIR_DATABASE__HOST", "localhost")
	t.Setenv("ORGDIR_DATABASE__USER", "orgdir")
	t.Setenv("ORGDIR_DATABASE__PASSWORD", "secret")
	t.Setenv("ORGDIR_DATABASE__NAME", "orgdir")
	t.Setenv("ORGDIR_CONTENT_API__ENDPOINT", "https://cms.example.com/graphql")
	t.Setenv("ORGDIR_CONTENT_API__TOKEN", "token")
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "server.port", envKey("ORGDIR_SERVER__PORT"))
	require.Equal(t, "content_api.page_size", envKey("ORGDIR_CONTENT_API__PAGE_SIZE"))
	require.Equal(t, "observability.logging.level", envKey("ORGDIR_OBSERVABILITY__LOGGING__LEVEL"))
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, 100, cfg.ContentAPI.PageSize)
	require.Equal(t, 30*time.Second, cfg.ContentAPI.Timeout)
	require.Equal(t, DepartmentMatchName, cfg.Loader.DepartmentMatch)
	require.False(t, cfg.Redis.Enabled())
	require.False(t, cfg.Integration.ReportsEnabled())

	require.NotNil(t, cfg.Observability)
	require.Equal(t, ServiceName, cfg.Observability.ServiceName)
	require.Equal(t, "development", cfg.Observability.Environment)
	require.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ORGDIR_SERVER__PORT", "9090")
	t.Setenv("ORGDIR_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("ORGDIR_CONTENT_API__PAGE_SIZE", "50")
	t.Setenv("ORGDIR_CONTENT_API__TIMEOUT", "5s")
	t.Setenv("ORGDIR_LOADER__DEPARTMENT_MATCH", "id")
	t.Setenv("ORGDIR_REDIS__ADDRESS", "localhost:6379")
	t.Setenv("ORGDIR_OBSERVABILITY__LOGGING__LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
	require.Equal(t, 50, cfg.ContentAPI.PageSize)
	require.Equal(t, 5*time.Second, cfg.ContentAPI.Timeout)
	require.Equal(t, DepartmentMatchID, cfg.Loader.DepartmentMatch)
	require.True(t, cfg.Redis.Enabled())
	require.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadConfigRejectsMissingContentAPI(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ORGDIR_CONTENT_API__ENDPOINT", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigRejectsUnknownDepartmentMatch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ORGDIR_LOADER__DEPARTMENT_MATCH", "title")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	require.Error(t, cfg.Validate())
}

func TestObservabilityHasCheck(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.True(t, cfg.HasCheck("database"))
	require.False(t, cfg.HasCheck("elastic"))

	cfg.HealthChecks.Enabled = false
	require.False(t, cfg.HasCheck("database"))
}
