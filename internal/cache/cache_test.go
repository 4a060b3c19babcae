package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedDoc struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestHelper(t *testing.T) (*Helper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHelper(client, "test:"), mr
}

func TestHelper_SetGetDelete(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	want := cachedDoc{ID: 7, Title: "Calculus"}
	if err := helper.Set(ctx, "doc:7", want, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// The stored key carries the helper prefix.
	if !mr.Exists("test:doc:7") {
		t.Fatal("prefixed key missing in redis")
	}

	var got cachedDoc
	if err := helper.Get(ctx, "doc:7", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if err := helper.Delete(ctx, "doc:7"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := helper.Get(ctx, "doc:7", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var got cachedDoc
	if err := helper.Get(context.Background(), "absent", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestHelper_Expiry(t *testing.T) {
	helper, mr := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "doc:1", cachedDoc{ID: 1}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var got cachedDoc
	if err := helper.Get(ctx, "doc:1", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedDoc{ID: 3, Title: "Physics"}, nil
	}

	var first cachedDoc
	if err := helper.CacheOrExecute(ctx, "doc:3", &first, time.Minute, fetch); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	var second cachedDoc
	if err := helper.CacheOrExecute(ctx, "doc:3", &second, time.Minute, fetch); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("fetch should run once, ran %d times", calls)
	}
	if first != second || second.Title != "Physics" {
		t.Fatalf("cached value mismatch: %+v vs %+v", first, second)
	}
}

func TestHelper_CacheOrExecuteFetchError(t *testing.T) {
	helper, _ := newTestHelper(t)

	wantErr := errors.New("db down")
	var got cachedDoc
	err := helper.CacheOrExecute(context.Background(), "doc:9", &got, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestHelper_NilClientDegrades(t *testing.T) {
	helper := NewHelper(nil, "test:")
	ctx := context.Background()

	var got cachedDoc
	if err := helper.Get(ctx, "k", &got); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable, got %v", err)
	}

	// Writes are dropped silently.
	if err := helper.Set(ctx, "k", cachedDoc{}, time.Minute); err != nil {
		t.Fatalf("set on nil client should be a no-op: %v", err)
	}
	if err := helper.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete on nil client should be a no-op: %v", err)
	}

	// CacheOrExecute always falls through to fetch.
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return cachedDoc{ID: 1}, nil
	}
	for i := 0; i < 2; i++ {
		if err := helper.CacheOrExecute(ctx, "k", &got, time.Minute, fetch); err != nil {
			t.Fatalf("cache-or-execute failed: %v", err)
		}
	}
	if calls != 2 {
		t.Fatalf("fetch should run every time without a cache, ran %d times", calls)
	}
}

func TestManager_ConfigTTLs(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager := NewManager(client)
	ctx := context.Background()

	tests := []struct {
		name   string
		helper *Helper
		cfg    Config
	}{
		{"question", manager.Question, QuestionCacheConfig},
		{"document", manager.Document, DocumentCacheConfig},
		{"user", manager.User, UserCacheConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got cachedDoc
			err := tt.helper.CacheOrExecute(ctx, "1", &got, tt.cfg.TTL, func() (interface{}, error) {
				return cachedDoc{ID: 1}, nil
			})
			if err != nil {
				t.Fatalf("cache-or-execute failed: %v", err)
			}
			if ttl := mr.TTL(tt.cfg.Prefix + "1"); ttl != tt.cfg.TTL {
				t.Fatalf("key stored with ttl %v, want %v", ttl, tt.cfg.TTL)
			}
		})
	}
}

func TestManager_HealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager := NewManager(client)
	if err := manager.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := NewManager(nil).HealthCheck(context.Background()); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable without a client, got %v", err)
	}
}
