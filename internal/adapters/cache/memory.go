package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/athebyme/shopify-product-service/internal/metrics"
	"github.com/athebyme/shopify-product-service/internal/utils"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

// MemoryCache кэш в памяти процесса; используется, когда Redis выключен
type MemoryCache struct {
	mu    sync.Mutex
	items *gocache.Cache
}

var _ interfaces.CachePort = (*MemoryCache)(nil)

// NewMemoryCache создает кэш с периодом очистки просроченных ключей cleanup
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.items.Get(key)
	if !ok {
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
		return nil, utils.ErrCacheMiss
	}
	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return v.([]byte), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	m.items.Set(key, value, ttl(expiration))
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.items.Delete(key)
	metrics.CacheOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Increment ведет себя как INCRBY + EXPIRE для нового ключа
func (m *MemoryCache) Increment(_ context.Context, key string, delta int64, expiration time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.items.Add(key, delta, ttl(expiration)); err == nil {
		metrics.CacheOperations.WithLabelValues("incr", "ok").Inc()
		return delta, nil
	}

	val, err := m.items.IncrementInt64(key, delta)
	if err != nil {
		metrics.CacheOperations.WithLabelValues("incr", "error").Inc()
		return 0, err
	}
	metrics.CacheOperations.WithLabelValues("incr", "ok").Inc()
	return val, nil
}

func (m *MemoryCache) Close() error {
	m.items.Flush()
	return nil
}

func ttl(expiration time.Duration) time.Duration {
	if expiration <= 0 {
		return gocache.NoExpiration
	}
	return expiration
}
