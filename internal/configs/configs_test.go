package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(nil))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Minute, cfg.OAuthStateTTL)
	assert.False(t, cfg.GoogleEnabled())
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestFromEnv_Production(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"ENVIRONMENT": "production"}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = FromEnv(env(map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s"}))
	assert.ErrorContains(t, err, "DATABASE_URL")

	cfg, err := FromEnv(env(map[string]string{
		"ENVIRONMENT":          "production",
		"JWT_SECRET":           "s",
		"STORE_DRIVER":         "memory",
		"ALLOWED_ORIGINS":      "https://a.example, ,https://b.example",
		"STORE_TIMEOUT":        "750ms",
		"GOOGLE_CLIENT_ID":     "id",
		"GOOGLE_CLIENT_SECRET": "secret",
		"GOOGLE_REDIRECT_URL":  "https://a.example/callback",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.True(t, cfg.GoogleEnabled())
}

func TestFromEnv_Invalid(t *testing.T) {
	for name, vars := range map[string]map[string]string{
		"port":      {"PORT": "80"},
		"port nan":  {"PORT": "eighty"},
		"driver":    {"STORE_DRIVER": "sqlite"},
		"timeout":   {"STORE_TIMEOUT": "soon"},
		"state ttl": {"OAUTH_STATE_TTL": "-1m"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}
