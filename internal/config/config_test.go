package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

meta:
  access_token: "file-token"
  ad_account_id: "act_123456"
  api_version: "v20.0"
  timeout_seconds: 45
  requests_per_second: 5
  batch_size: 500

redis:
  enabled: true
  addr: "cache:6379"
  insights_ttl_seconds: 60

logging:
  level: debug
  format: console

rate_limit:
  enabled: true
  requests: 10
  window_seconds: 30
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "file-token", cfg.Meta.AccessToken)
	assert.Equal(t, "123456", cfg.Meta.AccountID())
	assert.Equal(t, "v20.0", cfg.Meta.APIVersion)
	assert.Equal(t, 45*time.Second, cfg.Meta.Timeout())
	assert.Equal(t, 5.0, cfg.Meta.RequestsPerSecond)
	assert.Equal(t, 500, cfg.Meta.BatchSize)

	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.InsightsTTL())

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window())
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(configPath, []byte("meta:\n  access_token: \"x\"\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "https://graph.facebook.com", cfg.Meta.BaseURL)
	assert.Equal(t, "v19.0", cfg.Meta.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.Meta.Timeout())
	assert.Equal(t, 10000, cfg.Meta.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.InsightsTTL())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
meta:
  access_token: "file-token"
  ad_account_id: "111"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("META_ACCESS_TOKEN", "env-token")
	t.Setenv("META_AD_ACCOUNT_ID", "act_222")
	t.Setenv("META_BASE_URL", "http://localhost:8090")
	t.Setenv("PORT", "3001")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Meta.AccessToken)
	assert.Equal(t, "222", cfg.Meta.AccountID())
	assert.Equal(t, "http://localhost:8090", cfg.Meta.BaseURL)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvInvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    MetaConfig
		wantErr bool
	}{
		{"complete", MetaConfig{AccessToken: "tok", AdAccountID: "123"}, false},
		{"prefixed account", MetaConfig{AccessToken: "tok", AdAccountID: "act_123"}, false},
		{"missing token", MetaConfig{AdAccountID: "123"}, true},
		{"missing account", MetaConfig{AccessToken: "tok"}, true},
		{"bare prefix", MetaConfig{AccessToken: "tok", AdAccountID: "act_"}, true},
		{"negative batch size", MetaConfig{AccessToken: "tok", AdAccountID: "1", BatchSize: -1}, true},
		{"batch size over platform limit", MetaConfig{AccessToken: "tok", AdAccountID: "1", BatchSize: 10001}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Meta: tt.meta}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := (&Config{}).Validate()
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "META_ACCESS_TOKEN")
	assert.Contains(t, err.Error(), "META_AD_ACCOUNT_ID")
}
