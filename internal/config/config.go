package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL          = "http://localhost:8000"
	DefaultTimeout         = 30 * time.Second
	DefaultNotificationTTL = 5 * time.Second

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	APIURL string
	// Dir holds state.sqlite and the TUI log file.
	Dir string

	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	Timeout time.Duration
	// RateLimit is requests/second towards the API; 0 disables limiting.
	RateLimit float64
	RateBurst int

	NotificationTTL time.Duration
	MetricsAddr     string
	LogLevel        string
}

// Load reads an optional .env file and then the PULSE_* environment.
func Load() (*Config, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	dir, err := defaultDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:          getEnv("PULSE_API_URL", DefaultAPIURL),
		Dir:             getEnv("PULSE_DIR", dir),
		SessionBackend:  getEnv("PULSE_SESSION_BACKEND", BackendSQLite),
		RedisAddr:       getEnv("PULSE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("PULSE_REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("PULSE_REDIS_DB", 0),
		Timeout:         getEnvAsDuration("PULSE_TIMEOUT", DefaultTimeout),
		RateLimit:       getEnvAsFloat("PULSE_RATE_LIMIT", 10),
		RateBurst:       getEnvAsInt("PULSE_RATE_BURST", 5),
		NotificationTTL: getEnvAsDuration("PULSE_NOTIFY_TTL", DefaultNotificationTTL),
		MetricsAddr:     getEnv("PULSE_METRICS_ADDR", ""),
		LogLevel:        getEnv("PULSE_LOG_LEVEL", "info"),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url: %q", c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api url scheme: %q", u.Scheme)
	}
	switch c.SessionBackend {
	case BackendSQLite:
		if strings.TrimSpace(c.Dir) == "" {
			return fmt.Errorf("state dir is required for the sqlite session backend")
		}
	case BackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("PULSE_REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend: %s (expected sqlite|redis)", c.SessionBackend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.NotificationTTL <= 0 {
		return fmt.Errorf("notification ttl must be positive")
	}
	return nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return ".pulse", nil
	}
	return filepath.Join(home, ".pulse"), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return value
}
