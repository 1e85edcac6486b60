package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "SEVENS_ENV", "LOG_LEVEL", "REDIS_ADDR", "REDIS_DB",
		"HISTORIAN_QUEUE_NAME", "DATABASE_URL", "HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS",
		"SESSION_INACTIVITY_TIMEOUT_SEC", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}

	c := Load()
	assert.Equal(t, ":5000", c.Addr())
	assert.False(t, c.IsProduction())
	assert.Equal(t, []string{"https://*", "http://*"}, c.AllowedOrigins)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.RedisAddr)
	assert.Equal(t, DefaultQueueName, c.HistorianQueue)
	assert.Equal(t, 20, c.HistorianBatchSize)
	assert.Equal(t, 500*time.Millisecond, c.HistorianFlush)
	assert.Equal(t, 10*time.Minute, c.InactivityTimeout)
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("SEVENS_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://sevens.example.com, https://www.sevens.example.com,")
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HISTORIAN_BATCH_SIZE", "not-a-number")

	c := Load()
	assert.True(t, c.IsProduction())
	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, []string{"https://sevens.example.com", "https://www.sevens.example.com"}, c.AllowedOrigins)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, 20, c.HistorianBatchSize, "invalid integers fall back to the default")
}

func TestNewLogger(t *testing.T) {
	l := Config{LogLevel: "debug"}.NewLogger()
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	l = Config{LogLevel: "loud", Env: "production"}.NewLogger()
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}
