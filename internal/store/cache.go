package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kalagasite/internal/content"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStore serves Get from redis and falls back to the wrapped store.
// Writes go to the wrapped store first and then drop the cached copy.
// Redis failures are logged and never fail the call.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

// NewCachedStore wraps inner with a redis read-through cache.
func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{Store: inner, client: client, ttl: ttl, prefix: "content:", log: log}
}

func (c *CachedStore) cacheKey(collection, key string) string {
	return c.prefix + collection + "/" + key
}

func (c *CachedStore) Get(ctx context.Context, collection, key string) (content.Tree, error) {
	ck := c.cacheKey(collection, key)

	raw, err := c.client.Get(ctx, ck).Bytes()
	switch {
	case err == nil:
		var decoded map[string]any
		if jsonErr := json.Unmarshal(raw, &decoded); jsonErr == nil {
			if tree, normErr := content.NormalizeTree(decoded); normErr == nil {
				return tree, nil
			}
		}
		c.log.Warn("discarding unreadable cache entry", zap.String("key", ck))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("content cache read failed", zap.String("key", ck), zap.Error(err))
	}

	tree, err := c.Store.Get(ctx, collection, key)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(tree); jsonErr == nil {
		if setErr := c.client.Set(ctx, ck, encoded, c.ttl).Err(); setErr != nil {
			c.log.Warn("content cache write failed", zap.String("key", ck), zap.Error(setErr))
		}
	}
	return tree, nil
}

func (c *CachedStore) Set(ctx context.Context, collection, key string, value content.Tree) error {
	if err := c.Store.Set(ctx, collection, key, value); err != nil {
		return err
	}
	c.invalidate(ctx, collection, key)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, collection, key string, value content.Tree) error {
	if err := c.Store.Update(ctx, collection, key, value); err != nil {
		return err
	}
	c.invalidate(ctx, collection, key)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, collection, key string) error {
	if err := c.Store.Delete(ctx, collection, key); err != nil {
		return err
	}
	c.invalidate(ctx, collection, key)
	return nil
}

// Ping checks the wrapped store; cache reachability is not required.
func (c *CachedStore) Ping(ctx context.Context) error {
	if p, ok := c.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *CachedStore) invalidate(ctx context.Context, collection, key string) {
	ck := c.cacheKey(collection, key)
	if err := c.client.Del(ctx, ck).Err(); err != nil {
		c.log.Warn("content cache invalidation failed", zap.String("key", ck), zap.Error(err))
	}
}
