package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a byte-oriented TTL cache. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

type memoryItem struct {
	value      []byte
	expiration int64
}

// MemoryCache is an in-process cache with lazy expiry. Expired entries are
// dropped on read and by the background sweep.
type MemoryCache struct {
	items sync.Map
}

// NewMemoryCache creates a MemoryCache and starts a sweep goroutine that
// runs for the life of the process.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{}
	if sweepInterval > 0 {
		go c.sweep(sweepInterval)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.items.Load(key)
	if !ok {
		return nil, false
	}
	item := v.(memoryItem)
	if item.expiration > 0 && time.Now().UnixNano() > item.expiration {
		c.items.Delete(key)
		return nil, false
	}
	return item.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}
	c.items.Store(key, memoryItem{value: value, expiration: expiration})
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.items.Delete(key)
	}
}

func (c *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now().UnixNano()
		c.items.Range(func(key, v interface{}) bool {
			item := v.(memoryItem)
			if item.expiration > 0 && now > item.expiration {
				c.items.Delete(key)
			}
			return true
		})
	}
}

// Layer is a two-tier cache: an in-process L1 in front of Redis. Redis
// failures degrade to L1-only behavior; a nil Redis client disables L2
// entirely so callers never need to branch.
type Layer struct {
	l1        *MemoryCache
	redis     *redis.Client
	keyPrefix string
	l1TTL     time.Duration
}

// LayerConfig configures a cache Layer
type LayerConfig struct {
	KeyPrefix string
	L1TTL     time.Duration
}

// NewLayer creates a Layer backed by an existing Redis client (may be nil)
func NewLayer(redisClient *redis.Client, cfg LayerConfig) *Layer {
	l1TTL := cfg.L1TTL
	if l1TTL <= 0 {
		l1TTL = 30 * time.Second
	}
	return &Layer{
		l1:        NewMemoryCache(time.Minute),
		redis:     redisClient,
		keyPrefix: cfg.KeyPrefix,
		l1TTL:     l1TTL,
	}
}

func (l *Layer) Get(ctx context.Context, key string) ([]byte, bool) {
	full := l.keyPrefix + key
	if v, ok := l.l1.Get(ctx, full); ok {
		return v, true
	}
	if l.redis == nil {
		return nil, false
	}
	val, err := l.redis.Get(ctx, full).Bytes()
	if err != nil {
		return nil, false
	}
	l.l1.Set(ctx, full, val, l.l1TTL)
	return val, true
}

func (l *Layer) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	full := l.keyPrefix + key
	l1TTL := l.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	l.l1.Set(ctx, full, value, l1TTL)
	if l.redis != nil {
		l.redis.Set(ctx, full, value, ttl)
	}
}

func (l *Layer) Delete(ctx context.Context, keys ...string) {
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, l.keyPrefix+key)
	}
	l.l1.Delete(ctx, full...)
	if l.redis != nil {
		l.redis.Del(ctx, full...)
	}
}
