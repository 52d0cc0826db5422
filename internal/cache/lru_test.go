package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2, 0)
	c.Add("a", 1)
	c.Add("b", 2)

	_, _ = c.Get("a") // a is now MRU
	c.Add("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_UpdateKeepsSize(t *testing.T) {
	c := New[string, int](2, 0)
	c.Add("a", 1)
	c.Add("a", 10)

	v, _ := c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_TTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := New[string, string](3, time.Minute)
	c.now = func() time.Time { return now }

	c.Add("tok", "alice")
	v, ok := c.Get("tok")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	now = now.Add(time.Minute)
	_, ok = c.Get("tok")
	assert.False(t, ok, "entries expire exactly at their TTL")
	assert.Zero(t, c.Len())
}

func TestLRU_EvictsExpiredBeforeLive(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := New[string, int](2, time.Minute)
	c.now = func() time.Time { return now }

	c.Add("old", 1)
	now = now.Add(30 * time.Second)
	c.Add("live", 2)
	_, _ = c.Get("old") // old is MRU but about to expire

	now = now.Add(45 * time.Second)
	c.Add("new", 3)

	_, ok := c.Get("live")
	assert.True(t, ok)
	_, ok = c.Get("old")
	assert.False(t, ok)
}

func TestLRU_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[string, int](0, 0) })
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := New[int, int](64, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c.Add(i%100, g)
				c.Get(i % 50)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
