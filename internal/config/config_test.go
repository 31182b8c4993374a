package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) {
	t.Setenv("QONTO_API_BASE_URL", "https://qonto.example.com")
	t.Setenv("QONTO_ORGANIZATION_SLUG", "acme-1234")
	t.Setenv("QONTO_SECRET_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/qsplit")
	t.Setenv("APP_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("LOG_LEVEL", "debug")
}

func TestLoad(t *testing.T) {
	setEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://qonto.example.com", cfg.APIBaseURL)
	assert.Equal(t, "acme-1234", cfg.OrganizationSlug)
	assert.Equal(t, "sk-test", cfg.SecretKey)
	assert.Equal(t, "postgres://localhost:5432/qsplit", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t)
	t.Setenv("QONTO_API_BASE_URL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://thirdparty.qonto.com", cfg.APIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingRequired(t *testing.T) {
	setEnv(t)
	t.Setenv("QONTO_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SecretKey")
}

func TestLoadShortAppKey(t *testing.T) {
	setEnv(t)
	t.Setenv("APP_KEY", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AppKey")
}
