package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredentials is returned by Validate when the Meta access token
// or ad account id is not configured.
var ErrMissingCredentials = errors.New("missing Meta credentials")

// MaxBatchSize is the platform's per-call row limit for audience uploads.
const MaxBatchSize = 10000

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Meta      MetaConfig      `yaml:"meta"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// MetaConfig holds Meta Graph API configuration
type MetaConfig struct {
	AccessToken         string  `yaml:"access_token"`
	AdAccountID         string  `yaml:"ad_account_id"`
	APIVersion          string  `yaml:"api_version"`
	BaseURL             string  `yaml:"base_url"`
	TimeoutSeconds      int     `yaml:"timeout_seconds"`
	RequestsPerSecond   float64 `yaml:"requests_per_second"` // 0 disables the outbound limiter
	AudienceDescription string  `yaml:"audience_description"`
	BatchSize           int     `yaml:"batch_size"`
}

// Timeout returns the configured per-call timeout as a duration
func (c MetaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AccountID returns the ad account id without the "act_" prefix.
func (c MetaConfig) AccountID() string {
	return strings.TrimPrefix(strings.TrimSpace(c.AdAccountID), "act_")
}

// RedisConfig holds the optional insights cache settings
type RedisConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	InsightsTTLSeconds int    `yaml:"insights_ttl_seconds"`
}

// InsightsTTL returns how long cached insights responses stay valid
func (c RedisConfig) InsightsTTL() time.Duration {
	return time.Duration(c.InsightsTTLSeconds) * time.Second
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// RateLimitConfig holds inbound per-IP rate limiting settings
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	Requests      int  `yaml:"requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// Window returns the rate limit window as a duration
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads and parses the configuration file. A missing file yields an
// all-defaults config so the service can run from environment variables alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Meta.BaseURL == "" {
		cfg.Meta.BaseURL = "https://graph.facebook.com"
	}
	if cfg.Meta.APIVersion == "" {
		cfg.Meta.APIVersion = "v19.0"
	}
	if cfg.Meta.TimeoutSeconds == 0 {
		cfg.Meta.TimeoutSeconds = 30
	}
	if cfg.Meta.AudienceDescription == "" {
		cfg.Meta.AudienceDescription = "Customer list uploaded via API"
	}
	if cfg.Meta.BatchSize == 0 {
		cfg.Meta.BatchSize = MaxBatchSize
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.InsightsTTLSeconds == 0 {
		cfg.Redis.InsightsTTLSeconds = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 60
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("META_ACCESS_TOKEN"); v != "" {
		cfg.Meta.AccessToken = v
	}
	if v := os.Getenv("META_AD_ACCOUNT_ID"); v != "" {
		cfg.Meta.AdAccountID = v
	}
	if v := os.Getenv("META_API_VERSION"); v != "" {
		cfg.Meta.APIVersion = v
	}
	if v := os.Getenv("META_BASE_URL"); v != "" {
		cfg.Meta.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORS.AllowedOrigins = origins
	}

	return cfg, nil
}

// Validate performs the startup presence check on required credentials.
// The server must not serve traffic when this fails.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Meta.AccessToken) == "" {
		missing = append(missing, "META_ACCESS_TOKEN")
	}
	if c.Meta.AccountID() == "" {
		missing = append(missing, "META_AD_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	if c.Meta.BatchSize < 0 || c.Meta.BatchSize > MaxBatchSize {
		return fmt.Errorf("meta.batch_size must be between 1 and %d, got %d", MaxBatchSize, c.Meta.BatchSize)
	}
	return nil
}
