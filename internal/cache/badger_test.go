// SPDX-License-Identifier: MIT

package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func setupBadger(t *testing.T) *BadgerCache {
	t.Helper()

	c, err := NewBadgerCache(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open badger cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func TestBadgerCache_SetGet(t *testing.T) {
	c := setupBadger(t)

	c.Set("test-key", []byte("test-value"), 5*time.Minute)

	val, found := c.Get("test-key")
	if !found {
		t.Fatal("expected value to be found")
	}
	if string(val) != "test-value" {
		t.Errorf("expected 'test-value', got %q", val)
	}

	stats := c.Stats()
	if stats.Sets != 1 {
		t.Errorf("expected 1 set, got %d", stats.Sets)
	}
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
}

func TestBadgerCache_GetMissing(t *testing.T) {
	c := setupBadger(t)

	if _, found := c.Get("nonexistent"); found {
		t.Error("expected value to not be found")
	}

	stats := c.Stats()
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestBadgerCache_Delete(t *testing.T) {
	c := setupBadger(t)

	c.Set("delete-key", []byte("v"), 5*time.Minute)
	c.Delete("delete-key")

	if _, found := c.Get("delete-key"); found {
		t.Error("expected value to be deleted")
	}
}

func TestBadgerCache_Clear(t *testing.T) {
	c := setupBadger(t)

	c.Set("key1", []byte("value1"), 5*time.Minute)
	c.Set("key2", []byte("value2"), 5*time.Minute)

	c.Clear()

	stats := c.Stats()
	if stats.CurrentSize != 0 {
		t.Errorf("expected 0 items after clear, got %d", stats.CurrentSize)
	}
}

func TestBadgerCache_TTL(t *testing.T) {
	c := setupBadger(t)

	c.Set("ttl-key", []byte("v"), time.Second)

	if _, found := c.Get("ttl-key"); !found {
		t.Fatal("expected value to be found immediately")
	}

	time.Sleep(2100 * time.Millisecond)

	if _, found := c.Get("ttl-key"); found {
		t.Error("expected value to be expired")
	}
}

func TestBadgerCache_SubSecondTTLIsClamped(t *testing.T) {
	c := setupBadger(t)

	// Badger rounds expiry to whole seconds; without clamping, a 50ms TTL
	// would land in the current second and expire on the spot.
	c.Set("short-ttl", []byte("v"), 50*time.Millisecond)

	if _, found := c.Get("short-ttl"); !found {
		t.Fatal("expected value set with a sub-second TTL to be readable immediately")
	}
}
