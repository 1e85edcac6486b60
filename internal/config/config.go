// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process settings read from the environment (and .env via godotenv/autoload).
type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string
	LogLevel       string

	// RedisAddr empty disables the action log.
	RedisAddr      string
	RedisDB        int
	HistorianQueue string

	DatabaseURL        string
	HistorianBatchSize int
	HistorianFlush     time.Duration
	InactivityTimeout  time.Duration
}

// DefaultQueueName is the Redis list that carries session action records.
const DefaultQueueName = "sevens_actions"

// Load reads the configuration from environment variables, falling back to defaults.
func Load() Config {
	c := Config{
		Port:               getEnv("PORT", "5000"),
		Env:                getEnv("SEVENS_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		HistorianQueue:     getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		HistorianBatchSize: getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		InactivityTimeout:  time.Duration(getEnvInt("SESSION_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}

	// allow only origins specified in the environment in production mode
	if c.IsProduction() {
		for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	} else {
		c.AllowedOrigins = []string{"https://*", "http://*"}
	}
	return c
}

// IsProduction reports whether SEVENS_ENV selects production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
