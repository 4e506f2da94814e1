package common

import (
	"testing"
	"time"
)

func setupTestEnvironment(t *testing.T) (*Cache, func()) {
	t.Helper()

	cache := NewCache(0, 0)

	cleanup := func() {
		cache.Flush()
	}

	return cache, cleanup
}

func TestCache_Set(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")

	if _, ok := cache.Get("key"); !ok {
		t.Error("expected key to be set")
	}
}

func TestCache_SetWithExpiration(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Error("expected key to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set(CacheKeyPost("hello-world"), "value")
	cache.Delete(CacheKeyPost("hello-world"))

	if _, ok := cache.Get(CacheKeyPost("hello-world")); ok {
		t.Error("expected key to be deleted")
	}
}

func TestCache_Flush(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	cache.Set("key", "value")
	cache.Flush()

	if _, ok := cache.Get("key"); ok {
		t.Error("expected cache to be flushed")
	}
}

func TestCache_GetOrAdd(t *testing.T) {
	cache, cleanup := setupTestEnvironment(t)
	defer cleanup()

	calls := 0
	create := func() interface{} {
		calls++
		return calls
	}

	first := cache.GetOrAdd(CacheKeyRateLimiter("127.0.0.1"), create)
	second := cache.GetOrAdd(CacheKeyRateLimiter("127.0.0.1"), create)

	if first != 1 || second != 1 {
		t.Errorf("expected the first value to be kept, got %v and %v", first, second)
	}
	if calls != 1 {
		t.Errorf("expected create to run once, ran %d times", calls)
	}
}
