package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "product_events", cfg.Kafka.Topic)
	assert.Equal(t, 30*time.Second, cfg.Kafka.BreakerTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TotalTTL)
	assert.Equal(t, "@every 1m", cfg.Cache.RefreshSchedule)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TOTAL_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Address())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Cache.TotalTTL)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "zero")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("cache ttl", func(t *testing.T) {
		t.Setenv("CACHE_TOTAL_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("breaker timeout", func(t *testing.T) {
		t.Setenv("KAFKA_BREAKER_TIMEOUT", "later")
		_, err := Load()
		assert.Error(t, err)
	})
}
