package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_RequiresJWTSecretInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/arrendando")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/arrendando")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("FROM_EMAIL", "admin@arrendando.com.co")
	t.Setenv("CONTACT_EMAIL", "")
	t.Setenv("REPORT_CACHE_TTL", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
	assert.Equal(t, "admin@arrendando.com.co", cfg.ContactEmail)
	assert.Equal(t, 15*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 30, cfg.ContractExpiryWarningDays)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ParsesTypedValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/arrendando")
	t.Setenv("REPORT_CACHE_TTL", "120")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.co, https://b.co,")
	t.Setenv("WORKER_COUNT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.ReportCacheTTL)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, []string{"https://a.co", "https://b.co"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.WorkerCount)
}
