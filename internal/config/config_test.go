package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-api/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log   config.Log
		HTTP  config.HTTP
		Redis config.Redis
		Relay config.Relay
	}

	t.Run("Should load defaults", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.True(t, cfg.HTTP.Swagger)
		assert.True(t, cfg.HTTP.ValidateRequests)
		assert.Equal(t, []string{"*"}, cfg.HTTP.CorsAllowedOrigins)
		assert.Equal(t, time.Second, cfg.HTTP.ProductEventsInterval)
		assert.Equal(t, "products", cfg.Redis.Key)
		assert.Equal(t, uint32(100), cfg.Relay.BatchSize)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
	})

	t.Run("Should load overrides", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "redis:6379")
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
		t.Setenv("HTTP_PRODUCT_EVENTS_INTERVAL", "250ms")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, uint32(9090), cfg.HTTP.Port)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CorsAllowedOrigins)
		assert.Equal(t, 250*time.Millisecond, cfg.HTTP.ProductEventsInterval)
		assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	})

	t.Run("Should fail when a required variable is missing", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "")
		require.NoError(t, os.Unsetenv("REDIS_ADDR"))

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should fail on unknown log format", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}

func TestLogFormat(t *testing.T) {
	var f config.LogFormat
	require.NoError(t, f.UnmarshalText([]byte("text")))
	assert.Equal(t, config.LogFormatText, f)

	b, err := f.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TEXT", string(b))
}
