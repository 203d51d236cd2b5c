package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"interview-voice-service/internal/config"
)

const keyPrefix = "interview-voice-service:"

// RedisCache - кэш синтеза в Redis
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache подключается к Redis. Пустой адрес - кэш выключен, возвращается nil.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ошибка подключения к кэшу %s: %w", cfg.Addr, err)
	}
	return &RedisCache{rdb: rdb}, nil
}

// NewRedisCacheFromClient оборачивает готовый клиент
func NewRedisCacheFromClient(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Ping проверяет соединение, используется в /health
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
