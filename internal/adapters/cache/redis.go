package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/athebyme/shopify-product-service/internal/metrics"
	"github.com/athebyme/shopify-product-service/internal/utils"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

const keyPrefix = "shopify-product-service:"

// RedisOptions параметры подключения к Redis
type RedisOptions struct {
	Host            string
	Port            int
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	IdleCheckFreq   time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
}

type RedisCache struct {
	client *redis.Client
}

var _ interfaces.CachePort = (*RedisCache)(nil)

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:               fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:           opts.Password,
		DB:                 opts.DB,
		PoolSize:           opts.PoolSize,
		MinIdleConns:       opts.MinIdleConns,
		MaxRetries:         opts.MaxRetries,
		MinRetryBackoff:    opts.MinRetryBackoff,
		MaxRetryBackoff:    opts.MaxRetryBackoff,
		DialTimeout:        opts.DialTimeout,
		ReadTimeout:        opts.ReadTimeout,
		WriteTimeout:       opts.WriteTimeout,
		PoolTimeout:        opts.PoolTimeout,
		IdleTimeout:        opts.IdleTimeout,
		IdleCheckFrequency: opts.IdleCheckFreq,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func (r *RedisCache) buildKey(key string) string {
	return keyPrefix + key
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
			return nil, utils.ErrCacheMiss
		}
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, err
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	err := r.client.Set(ctx, r.buildKey(key), value, expiration).Err()
	metrics.CacheOperations.WithLabelValues("set", status(err)).Inc()
	return err
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, r.buildKey(key)).Err()
	metrics.CacheOperations.WithLabelValues("delete", status(err)).Inc()
	return err
}

// Increment увеличивает счетчик одной транзакцией. SET NX задает срок действия
// только новому ключу, поэтому окно не сдвигается последующими запросами
func (r *RedisCache) Increment(ctx context.Context, key string, delta int64, expiration time.Duration) (int64, error) {
	fullKey := r.buildKey(key)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if expiration > 0 {
			pipe.SetNX(ctx, fullKey, 0, expiration)
		}
		incr = pipe.IncrBy(ctx, fullKey, delta)
		return nil
	})
	if err != nil {
		metrics.CacheOperations.WithLabelValues("incr", "error").Inc()
		return 0, fmt.Errorf("ошибка увеличения счетчика: %w", err)
	}

	metrics.CacheOperations.WithLabelValues("incr", "ok").Inc()
	return incr.Val(), nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
