package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/observability"
	"yatube/internal/pagination"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store holds rendered pages. Get reports a miss with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore keeps pages in Redis so every instance shares one cache.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := observability.TraceRedisOperation(ctx, "get")
	defer span.End()

	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span := observability.TraceRedisOperation(ctx, "set")
	defer span.End()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// MemoryStore is a per-process store used when Redis is unavailable.
// Entry lifetime is fixed when the store is built; the ttl passed to Set is ignored.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryStore holds at most size pages, each for ttl.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 256
	}
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := s.lru.Get(key)
	return val, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.lru.Add(key, value)
	return nil
}

// FeedCache caches rendered feed pages for a fixed lifetime. Entries are
// never invalidated by writes; a new post shows up once the entry expires.
type FeedCache struct {
	store  Store
	prefix string
	ttl    time.Duration
	flight singleflight.Group
}

// NewFeedCache builds a cache over store. prefix namespaces its keys.
func NewFeedCache(store Store, prefix string, ttl time.Duration) *FeedCache {
	return &FeedCache{store: store, prefix: prefix, ttl: ttl}
}

// TTL returns the lifetime of a cached page.
func (c *FeedCache) TTL() time.Duration {
	return c.ttl
}

// Key returns the storage key for a raw page request. Requests that always
// resolve to the first page share one key.
func (c *FeedCache) Key(rawPage string) string {
	return c.prefix + ":page:" + pagination.CacheToken(rawPage)
}

// GetOrRender returns the cached page for rawPage, or calls render, stores its
// output and returns it. hit reports whether the bytes came from the store.
// Store failures are logged and the page is rendered uncached.
func (c *FeedCache) GetOrRender(ctx context.Context, rawPage string, render func(context.Context) ([]byte, error)) (body []byte, hit bool, err error) {
	key := c.Key(rawPage)

	cached, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		observability.FeedCacheRequests.WithLabelValues(c.prefix, observability.CacheError).Inc()
		middleware.Logger.WarnContext(ctx, "feed cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	case ok:
		observability.FeedCacheRequests.WithLabelValues(c.prefix, observability.CacheHit).Inc()
		return cached, true, nil
	default:
		observability.FeedCacheRequests.WithLabelValues(c.prefix, observability.CacheMiss).Inc()
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// Shared by every caller waiting on key, so one caller going away
		// must not fail the others.
		shared := context.WithoutCancel(ctx)
		rendered, err := render(shared)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(shared, key, rendered, c.ttl); err != nil {
			middleware.Logger.WarnContext(shared, "feed cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return rendered, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}
