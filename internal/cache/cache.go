package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

// Cache holds the most recent scrape result between requests. It is an
// explicit entity with an explicit invalidation operation; the scraping core
// itself stays stateless per call.
type Cache interface {
	Get(ctx context.Context) ([]models.PostRecord, bool, error)
	Set(ctx context.Context, posts []models.PostRecord) error
	Invalidate(ctx context.Context) error
}

const postsKey = "doppel:posts"

// Redis-backed cache; used when storage.redis is configured.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context) ([]models.PostRecord, bool, error) {
	val, err := c.client.Get(ctx, postsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var posts []models.PostRecord
	if err := json.Unmarshal([]byte(val), &posts); err != nil {
		return nil, false, err
	}
	return posts, true, nil
}

func (c *RedisCache) Set(ctx context.Context, posts []models.PostRecord) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, postsKey, data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, postsKey).Err()
}

// MemoryCache is the in-process fallback, also used in tests.
type MemoryCache struct {
	mu      sync.Mutex
	posts   []models.PostRecord
	set     bool
	expires time.Time
	ttl     time.Duration
}

func NewMemory(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(context.Context) ([]models.PostRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		return nil, false, nil
	}
	if c.ttl > 0 && time.Now().After(c.expires) {
		c.posts, c.set = nil, false
		return nil, false, nil
	}
	out := make([]models.PostRecord, len(c.posts))
	copy(out, c.posts)
	return out, true, nil
}

func (c *MemoryCache) Set(_ context.Context, posts []models.PostRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = make([]models.PostRecord, len(posts))
	copy(c.posts, posts)
	c.set = true
	c.expires = time.Now().Add(c.ttl)
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts, c.set = nil, false
	return nil
}
