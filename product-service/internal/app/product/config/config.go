package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит все настройки Product Service
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Cache   CacheConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host string // по умолчанию 0.0.0.0
	Port string // по умолчанию 8000
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig - кеш общего количества товаров
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers        []string
	Topic          string        // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED, PRODUCT_RATED
	BreakerTimeout time.Duration // сколько breaker остается открытым
}

type JWTConfig struct {
	Secret string // должен совпадать с сервисом, выпускающим токены
}

type CacheConfig struct {
	TotalTTL        time.Duration
	RefreshSchedule string // cron выражение для прогрева кеша
}

type LogConfig struct {
	Level        string
	LogstashAddr string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	totalTTL, err := time.ParseDuration(getEnv("CACHE_TOTAL_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TOTAL_TTL value: %w", err)
	}

	breakerTimeout, err := time.ParseDuration(getEnv("KAFKA_BREAKER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_BREAKER_TIMEOUT value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8000"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "ecommerce"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:          getEnv("KAFKA_TOPIC", "product_events"),
			BreakerTimeout: breakerTimeout,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Cache: CacheConfig{
			TotalTTL:        totalTTL,
			RefreshSchedule: getEnv("CACHE_REFRESH_SCHEDULE", "@every 1m"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
