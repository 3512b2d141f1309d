package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ecommerce/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	totalCacheKey  = "products:total"
	keyPrefix      = "products"
	metricsService = "product-service"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient подключается к Redis и проверяет соединение
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetTotal(ctx context.Context) (int64, bool, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	raw, err := c.client.Get(ctx, totalCacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(metricsService, keyPrefix)
			return 0, false, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return 0, false, fmt.Errorf("failed to get total from cache: %w", err)
	}

	total, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		metrics.RecordCacheMiss(metricsService, keyPrefix)
		return 0, false, fmt.Errorf("invalid cached total %q: %w", raw, err)
	}

	metrics.RecordCacheHit(metricsService, keyPrefix)
	return total, true, nil
}

func (c *RedisCache) SetTotal(ctx context.Context, total int64) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := c.client.Set(ctx, totalCacheKey, total, c.ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set total in cache: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateTotal(ctx context.Context) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := c.client.Del(ctx, totalCacheKey).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate cached total: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
