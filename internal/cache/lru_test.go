package cache

import (
	"context"
	"testing"

	"github.com/hupe1980/geotile/resource"
	"github.com/stretchr/testify/assert"
)

func TestLRU_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(10, nil)

	c.Set(ctx, Key{Name: "a"}, make([]byte, 4))
	c.Set(ctx, Key{Name: "b"}, make([]byte, 4))

	// Touch a so b is the eviction victim.
	_, ok := c.Get(ctx, Key{Name: "a"})
	assert.True(t, ok)

	c.Set(ctx, Key{Name: "c"}, make([]byte, 4))

	_, ok = c.Get(ctx, Key{Name: "b"})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Name: "a"})
	assert.True(t, ok)
	_, ok = c.Get(ctx, Key{Name: "c"})
	assert.True(t, ok)
	assert.Equal(t, int64(8), c.Size())
	assert.Equal(t, 2, c.Len())
}

func TestLRU_EdgeCases(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRU(50, rc)
	k := Key{Name: "tiles/0001.tile", Block: 1}

	c.Set(ctx, k, make([]byte, 60))
	_, ok := c.Get(ctx, k)
	assert.False(t, ok, "block larger than capacity must not be cached")

	c.Set(ctx, k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())
	c.Set(ctx, k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	c.Set(ctx, k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())

	rc2 := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c2 := NewLRU(50, rc2)
	c2.Set(ctx, k, make([]byte, 8))
	c2.Set(ctx, k, make([]byte, 12))

	v, ok := c2.Get(ctx, k)
	assert.True(t, ok)
	assert.Len(t, v, 8, "growth denied by the controller keeps the old value")
}

func TestLRU_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(100, nil)
	c.Set(ctx, Key{Name: "x"}, []byte{1})
	c.Get(ctx, Key{Name: "x"})
	c.Get(ctx, Key{Name: "y"})

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_InvalidateBlob(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{})
	c := NewLRU(100, rc)
	c.Set(ctx, Key{Name: "t1", Block: 0}, []byte("a"))
	c.Set(ctx, Key{Name: "t1", Block: 1}, []byte("b"))
	c.Set(ctx, Key{Name: "t2", Block: 0}, []byte("c"))

	InvalidateBlob(c, "t1")

	_, ok := c.Get(ctx, Key{Name: "t1", Block: 0})
	assert.False(t, ok)
	_, ok = c.Get(ctx, Key{Name: "t2", Block: 0})
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Size())
	assert.Equal(t, int64(1), rc.MemoryUsage())
}
