package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentVariables_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadEnvironmentVariables()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadEnvironmentVariables_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("API_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("LOGIN_RATE_LIMIT", "")

	cfg, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.NotEqual(t, cfg.JWTSecret, cfg.SessionSecret)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "10-M", cfg.LoginRateLimit)
	assert.Empty(t, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentVariables_DerivedSessionSecretIsStable(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ENVIRONMENT", "development")

	t.Setenv("JWT_SECRET", "secret")
	first, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	again, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	other, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	assert.Equal(t, first.SessionSecret, again.SessionSecret)
	assert.NotEqual(t, first.SessionSecret, other.SessionSecret)
	assert.NotEqual(t, "secret", first.SessionSecret)
	assert.Len(t, first.SessionSecret, 64)
}

func TestLoadEnvironmentVariables_ProductionNeedsSessionSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadEnvironmentVariables()
	assert.Error(t, err)
}

func TestLoadEnvironmentVariables_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_SECRET", "flash")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_URL", "https://api.example.com/api/")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := LoadEnvironmentVariables()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.APIURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestParseClientFlags(t *testing.T) {
	flags, err := ParseClientFlags([]string{"-api", "http://backend/api/", "-state", "/tmp/state.json", "-refresh", "30s"})
	require.NoError(t, err)

	assert.Equal(t, "http://backend/api", flags.APIURL)
	assert.Equal(t, "/tmp/state.json", flags.StatePath)
	assert.Equal(t, 30*time.Second, flags.RefreshInterval)
}

func TestParseClientFlags_Defaults(t *testing.T) {
	flags, err := ParseClientFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultClientFlags(), flags)
}
