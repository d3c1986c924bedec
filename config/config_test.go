package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"API_BASE_URL", "SERVER_PORT", "JWT_SECRET_KEY", "ALLOWED_ORIGINS",
	"CACHE_TTL", "API_RATE_LIMIT", "API_TIMEOUT", "ALLOW_RESULT_RESET", "TIMEZONE",
	"MARKER_STORE", "DATABASE_URL",
	"R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME",
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"API_BASE_URL": "http://api.example:8081/"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://api.example:8081", cfg.APIBaseURL)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, 20.0, cfg.APIRateLimit)
	assert.False(t, cfg.AllowResultReset)
	assert.Equal(t, MarkerStoreMemory, cfg.MarkerStore)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"API_BASE_URL":       "https://api.example",
		"SERVER_PORT":        "9000",
		"ALLOWED_ORIGINS":    "https://a.example, https://b.example,",
		"CACHE_TTL":          "0s",
		"ALLOW_RESULT_RESET": "true",
		"TIMEZONE":           "UTC",
		"MARKER_STORE":       "Postgres",
		"DATABASE_URL":       "postgres://localhost/client",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.CacheTTL)
	assert.True(t, cfg.AllowResultReset)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, MarkerStorePostgres, cfg.MarkerStore)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api url", map[string]string{}},
		{"relative api url", map[string]string{"API_BASE_URL": "api/v1"}},
		{"bad port", map[string]string{"API_BASE_URL": "http://a", "SERVER_PORT": "70000"}},
		{"bad ttl", map[string]string{"API_BASE_URL": "http://a", "CACHE_TTL": "soon"}},
		{"zero timeout", map[string]string{"API_BASE_URL": "http://a", "API_TIMEOUT": "0s"}},
		{"negative rate", map[string]string{"API_BASE_URL": "http://a", "API_RATE_LIMIT": "-1"}},
		{"postgres without dsn", map[string]string{"API_BASE_URL": "http://a", "MARKER_STORE": "postgres"}},
		{"r2 without bucket", map[string]string{"API_BASE_URL": "http://a", "MARKER_STORE": "r2", "R2_ACCOUNT_ID": "x"}},
		{"unknown store", map[string]string{"API_BASE_URL": "http://a", "MARKER_STORE": "redis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
