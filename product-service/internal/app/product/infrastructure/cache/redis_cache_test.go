package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisCacheTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	client    *redis.Client
	cache     *RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}

func (s *RedisCacheTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})
	s.cache = NewRedisCache(s.client, time.Minute)
}

func (s *RedisCacheTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisCacheTestSuite) TearDownSuite() {
	s.client.Close()
	s.miniRedis.Close()
}

func (s *RedisCacheTestSuite) TestGetTotal_Miss() {
	total, ok, err := s.cache.GetTotal(context.Background())

	s.NoError(err)
	s.False(ok)
	s.Zero(total)
}

func (s *RedisCacheTestSuite) TestSetThenGet() {
	ctx := context.Background()

	s.Require().NoError(s.cache.SetTotal(ctx, 42))

	total, ok, err := s.cache.GetTotal(ctx)
	s.NoError(err)
	s.True(ok)
	s.Equal(int64(42), total)
	s.Equal(time.Minute, s.miniRedis.TTL(totalCacheKey))
}

func (s *RedisCacheTestSuite) TestSetTotal_Expires() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SetTotal(ctx, 7))

	s.miniRedis.FastForward(2 * time.Minute)

	_, ok, err := s.cache.GetTotal(ctx)
	s.NoError(err)
	s.False(ok)
}

func (s *RedisCacheTestSuite) TestInvalidateTotal() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SetTotal(ctx, 10))

	s.NoError(s.cache.InvalidateTotal(ctx))

	_, ok, err := s.cache.GetTotal(ctx)
	s.NoError(err)
	s.False(ok)
}

func (s *RedisCacheTestSuite) TestGetTotal_Corrupted() {
	s.Require().NoError(s.miniRedis.Set(totalCacheKey, "many"))

	_, ok, err := s.cache.GetTotal(context.Background())
	s.Error(err)
	s.False(ok)
}

func (s *RedisCacheTestSuite) TestGetTotal_ServerDown() {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()

	_, ok, err := NewRedisCache(client, time.Minute).GetTotal(context.Background())
	s.Error(err)
	s.False(ok)
}
