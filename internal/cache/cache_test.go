package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	c.Set(ctx, "key", []byte("value"), time.Minute)

	got, ok := c.Get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	_, ok := c.Get(ctx, "nope")
	assert.False(t, ok)
}

func TestMemoryCache_ExpiryIsLazy(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	c.Set(ctx, "key", []byte("value"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	c.Set(ctx, "key", []byte("value"), 0)
	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get(ctx, "key")
	assert.True(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "b", []byte("2"), time.Minute)
	c.Delete(ctx, "a", "b")

	_, okA := c.Get(ctx, "a")
	_, okB := c.Get(ctx, "b")
	assert.False(t, okA)
	assert.False(t, okB)
}

func TestLayer_NilRedisDegradesToL1(t *testing.T) {
	ctx := context.Background()
	l := NewLayer(nil, LayerConfig{KeyPrefix: "test:", L1TTL: time.Minute})

	l.Set(ctx, "key", []byte("value"), time.Minute)

	got, ok := l.Get(ctx, "key")
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	l.Delete(ctx, "key")
	_, ok = l.Get(ctx, "key")
	assert.False(t, ok)
}
