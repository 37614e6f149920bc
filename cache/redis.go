package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/utils"
)

const pagePrefix = "page:"

// RedisCache is the production PageCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects a Redis-backed page cache from configuration.
func NewRedisCache(cfg config.AppConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.Sugar.Warnf("redis ping failed, page cache degraded: %v", err)
	}
	return &RedisCache{
		client: client,
		ttl:    time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}
}

// Get returns cached page bytes for a key.
func (r *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := r.client.Get(ctx, pagePrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.Sugar.Debugf("cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// Set stores page bytes. A non-positive ttl falls back to the configured default.
func (r *RedisCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = r.ttl
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Set(ctx, pagePrefix+key, value, ttl).Err(); err != nil {
		utils.Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// Clear deletes every page entry using SCAN to avoid blocking Redis.
func (r *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // bound rounds to avoid long loops
		keys, cur, err := r.client.Scan(ctx, cursor, pagePrefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := r.client.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
