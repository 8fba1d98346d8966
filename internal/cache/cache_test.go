// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k", []byte("v"), 5*time.Minute)

	val, found := c.Get("k")
	if !found {
		t.Fatal("expected value to be found")
	}
	if string(val) != "v" {
		t.Errorf("expected 'v', got %q", val)
	}

	stats := c.Stats()
	if stats.Sets != 1 {
		t.Errorf("expected 1 set, got %d", stats.Sets)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := NewMemoryCache(0)

	_, found := c.Get("nonexistent")
	if found {
		t.Error("expected value to not be found")
	}

	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("ttl-key", []byte("ttl-value"), 10*time.Millisecond)

	if _, found := c.Get("ttl-key"); !found {
		t.Fatal("expected value to be found immediately")
	}

	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("ttl-key"); found {
		t.Error("expected value to be expired")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k", []byte("v"), 5*time.Minute)
	c.Delete("k")

	if _, found := c.Get("k"); found {
		t.Error("expected value to be deleted")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(0)

	c.Set("k1", []byte("v1"), 5*time.Minute)
	c.Set("k2", []byte("v2"), 5*time.Minute)

	c.Clear()

	stats := c.Stats()
	if stats.CurrentSize != 0 {
		t.Errorf("expected 0 items after clear, got %d", stats.CurrentSize)
	}
}

func TestMemoryCache_JanitorEvicts(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond).(*memoryCache)
	defer c.Stop()

	c.Set("k", []byte("v"), 1*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.Stats().Evictions > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected janitor to evict expired entry")
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()

	c.Set("k", []byte("v"), 5*time.Minute)
	if _, found := c.Get("k"); found {
		t.Error("noop cache must never return values")
	}
	if c.Stats() != (Stats{}) {
		t.Error("noop cache must report empty stats")
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(0)

	const numGoroutines = 10
	const numOps = 100

	done := make(chan bool, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numOps; j++ {
				c.Set("concurrent-key", []byte("x"), 5*time.Minute)
				c.Get("concurrent-key")
			}
			done <- true
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	stats := c.Stats()
	if stats.Sets != int64(numGoroutines*numOps) {
		t.Errorf("expected %d sets, got %d", numGoroutines*numOps, stats.Sets)
	}
}
