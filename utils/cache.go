// File: utils/cache.go
package utils

import (
	"context"
	"time"

	"github.com/hazqeelknight/events/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheClient is the shared cache client used for availability results.
var CacheClient *redis.Client

// InitCache initializes the Redis cache client (using DB from AppConfig).
// A failed ping is logged but not fatal: the availability cache degrades
// to an in-process store when Redis is unreachable.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		GetLogger().Warn("Failed to connect to Redis (Cache), falling back to in-process cache",
			zap.String("addr", config.AppConfig.RedisAddr), zap.Error(err))
	}
}

// GetCacheClient returns the shared cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}
