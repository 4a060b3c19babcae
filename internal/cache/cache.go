package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheMiss         = errors.New("cache miss")
)

// Helper provides prefix-scoped cache-aside operations on Redis.
// A nil client degrades gracefully: reads miss, writes are dropped.
type Helper struct {
	client *redis.Client
	prefix string
}

func NewHelper(client *redis.Client, prefix string) *Helper {
	return &Helper{client: client, prefix: prefix}
}

// Config pairs a key prefix with a TTL for one class of cached data.
type Config struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Question sets change only on explicit regeneration, so they can
	// live longer than the rest.
	QuestionCacheConfig = Config{TTL: 30 * time.Minute, Prefix: "questions:"}

	// Document metadata is invalidated on every moderation transition.
	DocumentCacheConfig = Config{TTL: 5 * time.Minute, Prefix: "document:"}

	UserCacheConfig = Config{TTL: 2 * time.Minute, Prefix: "user:"}
)

func (h *Helper) key(key string) string {
	return h.prefix + key
}

// Get retrieves and unmarshals a cached value into dest.
func (h *Helper) Get(ctx context.Context, key string, dest interface{}) error {
	if h.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := h.client.Get(ctx, h.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores a value with the given TTL.
func (h *Helper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if h.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return h.client.Set(ctx, h.key(key), data, ttl).Err()
}

// Delete removes keys from the cache.
func (h *Helper) Delete(ctx context.Context, keys ...string) error {
	if h.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = h.key(key)
	}
	return h.client.Del(ctx, cacheKeys...).Err()
}

// CacheOrExecute implements the cache-aside pattern: return the cached value
// when present, otherwise run fetch, store its result, and return it. Cache
// errors other than a miss are tolerated and fall through to fetch.
func (h *Helper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() (interface{}, error)) error {
	err := h.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	if err := h.Set(ctx, key, value, ttl); err != nil {
		// A failed cache write must not fail the read path.
		_ = err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Manager bundles the cache helpers this service uses.
type Manager struct {
	Question *Helper
	Document *Helper
	User     *Helper
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{
		Question: NewHelper(client, QuestionCacheConfig.Prefix),
		Document: NewHelper(client, DocumentCacheConfig.Prefix),
		User:     NewHelper(client, UserCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.Question.client == nil {
		return ErrCacheNotAvailable
	}
	if _, err := m.Question.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
