package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the production portal and the public postal lookup service.
const (
	DefaultAPIURL        = "https://portalwebapi-simohu.onebox.one"
	DefaultViaCEPURL     = "https://viacep.com.br"
	DefaultHTTPTimeout   = 15 * time.Second
	DefaultLookupTimeout = 10 * time.Second
	DefaultMockAddr      = ":8090"
)

// API configures the portal HTTP client.
type API struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	ProfileID      int           `yaml:"profile_id"`
	PortalUserType int           `yaml:"portal_user_type"`
}

// Lookup configures the postal-code lookup client and its optional cache.
type Lookup struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Autofill string        `yaml:"autofill"` // "overwrite" or "preserve"
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Breaker opens after BreakerFailures consecutive upstream errors and
	// retries after BreakerCooldown.
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RedisConfig holds connection settings for the optional lookup cache.
// An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MockPortal configures the local stand-in server.
type MockPortal struct {
	Addr          string `yaml:"addr"`
	JWTSigningKey string `yaml:"jwt_signing_key"`
}

// Config is the full client configuration.
type Config struct {
	API        API         `yaml:"api"`
	Lookup     Lookup      `yaml:"lookup"`
	Log        Log         `yaml:"log"`
	Redis      RedisConfig `yaml:"redis"`
	MockPortal MockPortal  `yaml:"mock_portal"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        DefaultAPIURL,
			Timeout:        DefaultHTTPTimeout,
			ProfileID:      1,
			PortalUserType: 1,
		},
		Lookup: Lookup{
			BaseURL:  DefaultViaCEPURL,
			Timeout:  DefaultLookupTimeout,
			Autofill: "overwrite",
			CacheTTL: 24 * time.Hour,

			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Log: Log{Level: "info", Format: "text"},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 1,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		MockPortal: MockPortal{
			Addr: DefaultMockAddr,
			// Use a default for development - should be overridden in production
			JWTSigningKey: "dev-secret-key-change-in-production",
		},
	}
}

// FromEnv builds a Config from defaults and environment variables so main stays lean.
func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg, os.LookupEnv)
	return cfg
}

// Load reads an optional YAML file over the defaults, then applies environment
// overrides. An empty path behaves like FromEnv.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, env lookupFunc) {
	setString(env, "SIMOHU_API_URL", &cfg.API.BaseURL)
	setDuration(env, "SIMOHU_HTTP_TIMEOUT", &cfg.API.Timeout)
	setInt(env, "SIMOHU_PROFILE_ID", &cfg.API.ProfileID)
	setInt(env, "SIMOHU_PORTAL_USER_TYPE", &cfg.API.PortalUserType)
	setString(env, "SIMOHU_VIACEP_URL", &cfg.Lookup.BaseURL)
	setDuration(env, "SIMOHU_LOOKUP_TIMEOUT", &cfg.Lookup.Timeout)
	setString(env, "SIMOHU_AUTOFILL", &cfg.Lookup.Autofill)
	setDuration(env, "SIMOHU_LOOKUP_CACHE_TTL", &cfg.Lookup.CacheTTL)
	setString(env, "SIMOHU_LOG_LEVEL", &cfg.Log.Level)
	setString(env, "SIMOHU_LOG_FORMAT", &cfg.Log.Format)
	setString(env, "REDIS_URL", &cfg.Redis.URL)
	setString(env, "MOCKPORTAL_ADDR", &cfg.MockPortal.Addr)
	setString(env, "JWT_SIGNING_KEY", &cfg.MockPortal.JWTSigningKey)
}

func setString(env lookupFunc, key string, dst *string) {
	if v, ok := env(key); ok && v != "" {
		*dst = v
	}
}

// Malformed numeric values are ignored and the previous value kept.
func setInt(env lookupFunc, key string, dst *int) {
	if v, ok := env(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(env lookupFunc, key string, dst *time.Duration) {
	if v, ok := env(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
