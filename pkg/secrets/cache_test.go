package secrets

import (
	"sync"
	"testing"
	"time"
)

func TestCache_PutAndGet(t *testing.T) {
	cache := NewCache[map[string]string](2 * time.Second)
	key := "questrade/refresh-token"

	// should miss initially
	if _, ok := cache.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Put(key, map[string]string{"refresh_token": "rt-1"})

	// immediate hit
	if values, ok := cache.Get(key); !ok {
		t.Fatal("expected cache hit")
	} else if values["refresh_token"] != "rt-1" {
		t.Errorf("expected refresh_token=rt-1, got %s", values["refresh_token"])
	}
}

func TestCache_Expiration(t *testing.T) {
	cache := NewCache[string](100 * time.Millisecond)
	cache.Put("k", "v")

	time.Sleep(150 * time.Millisecond)

	if _, ok := cache.Get("k"); ok {
		t.Fatal("expected expired cache entry")
	}
}

func TestCache_Bust(t *testing.T) {
	cache := NewCache[string](5 * time.Second)
	cache.Put("k", "v")

	cache.Bust("k")
	if _, ok := cache.Get("k"); ok {
		t.Fatal("expected cache miss after bust")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache[int](2 * time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Put("shared", n)
			cache.Get("shared")
		}(i)
	}
	wg.Wait()

	if _, ok := cache.Get("shared"); !ok {
		t.Fatal("expected a value after concurrent writes")
	}
}
