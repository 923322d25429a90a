package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration.
// It is populated from environment variables; the binaries load .env first.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	MockAPI MockAPIConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	LogLevel    string
}

// APIConfig describes the REST and OAuth endpoints the client talks to.
type APIConfig struct {
	BaseURL  string        // REST root, already including /api
	OAuthURL string        // OAuth root serving /token and /me
	Timeout  time.Duration // per request
	PageSize int           // default list page size
}

type SessionConfig struct {
	Store  string // file, redis, memory
	Path   string // file store location
	Prefix string // key prefix for shared stores
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

// MockAPIConfig configures cmd/mockapi.
type MockAPIConfig struct {
	Port               string
	JWTSecret          string
	AccessTokenExpiry  int // minutes
	RefreshTokenExpiry int // hours
	SuperuserName      string
	SuperuserPassword  string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library Client"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL:  getEnv("API_BASE_URL", "http://localhost:8080/api"),
			OAuthURL: getEnv("OAUTH_BASE_URL", "http://localhost:8080/oauth"),
			Timeout:  time.Duration(getEnvInt("API_TIMEOUT_MS", 5000)) * time.Millisecond,
			PageSize: getEnvInt("PAGE_SIZE", 25),
		},
		Session: SessionConfig{
			Store:  getEnv("SESSION_STORE", "file"),
			Path:   getEnv("SESSION_PATH", defaultSessionPath()),
			Prefix: getEnv("SESSION_PREFIX", "library-client:"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MockAPI: MockAPIConfig{
			Port:               getEnv("MOCK_API_PORT", "8080"),
			JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry:  getEnvInt("JWT_ACCESS_EXPIRY", 15),
			RefreshTokenExpiry: getEnvInt("JWT_REFRESH_EXPIRY", 72),
			SuperuserName:      getEnv("MOCK_SUPERUSER", "superuser"),
			SuperuserPassword:  getEnv("MOCK_SUPERUSER_PASSWORD", "superuser"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"API_BASE_URL": c.API.BaseURL, "OAUTH_BASE_URL": c.API.OAuthURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT_MS must be positive")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}

	switch c.Session.Store {
	case "file":
		if c.Session.Path == "" {
			return fmt.Errorf("SESSION_PATH must be set for the file session store")
		}
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}

	if c.App.Environment == "production" && c.MockAPI.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "library-client", "session.json")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
