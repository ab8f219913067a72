package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_BasicGetPut(t *testing.T) {
	c := NewLRU[string, string](10, 5*time.Minute)

	c.Put("0xaa", "alice.base.eth")
	c.Put("0xbb", "")

	v, ok := c.Get("0xaa")
	require.True(t, ok)
	assert.Equal(t, "alice.base.eth", v)

	v, ok = c.Get("0xbb")
	require.True(t, ok, "negative results are cached too")
	assert.Empty(t, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string, int](3, 5*time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")
	c.Put("d", 4)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 3, c.Len())
}

func TestLRU_TTLExpiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU[string, bool](10, time.Minute, WithClock[string, bool](func() time.Time { return now }))

	c.Put("a", true)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	c := NewLRU[string, int](2, 0, WithClock[string, int](func() time.Time { return now }))
	c.Put("a", 1)
	now = now.Add(100 * time.Hour)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestLRU_PutRefreshesExisting(t *testing.T) {
	c := NewLRU[string, int](2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)
	c.Put("c", 3)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestLRU_RemoveAndMinCapacity(t *testing.T) {
	c := NewLRU[string, int](0, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	assert.Equal(t, 1, c.Len())

	c.Remove("b")
	c.Remove("nope")
	assert.Equal(t, 0, c.Len())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int, int](64, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(i*100+j, j)
				c.Get(j)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
}
