package lib

import (
	"context"
	"errors"
	"log"
	"taskflow/src/config"
	"taskflow/src/services"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// GetRedisClient returns nil when REDIS_HOST is unset or unparsable.
func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := config.Load().RedisHost
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// RedisCache backs the role and workflow caches.
type RedisCache struct {
	client *redis.Client
}

var _ services.Cache = (*RedisCache)(nil)

func NewRedisCache(c *redis.Client) *RedisCache {
	return &RedisCache{client: c}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// PingRedis reports whether the configured server answers.
func PingRedis(ctx context.Context) error {
	rdb := GetRedisClient()
	if rdb == nil {
		return errors.New("redis is not configured")
	}
	return rdb.Ping(ctx).Err()
}
