package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL("a", "x", 10*time.Millisecond)
	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("a")
	require.False(t, ok, "expired entry should not be returned")
}

func TestLRUEviction(t *testing.T) {
	var evicted []string
	c := New(Config{
		DefaultTTL: time.Minute,
		MaxItems:   2,
		OnEviction: func(key string, _ any) {
			evicted = append(evicted, key)
		},
	})
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	// Touch "a" so "b" becomes the eviction candidate.
	_, _ = c.Get("a")
	c.Set("c", 3)

	require.Equal(t, []string{"b"}, evicted)
	_, ok := c.Get("a")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestJanitorSweep(t *testing.T) {
	c := New(Config{CleanupInterval: 10 * time.Millisecond})
	defer c.Close()

	c.SetWithTTL("a", 1, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDeleteAndOverwrite(t *testing.T) {
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.Set("a", 1)
	c.Set("a", 2)
	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 1, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	require.False(t, ok)
}
