package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marketplace cache keys. Install paths invalidate exactly this fixed set.
const (
	KeyMarketplaceListing  = "marketplace:templates"
	KeyMarketplaceFeatured = "marketplace:featured"
)

var MarketplaceKeys = []string{KeyMarketplaceListing, KeyMarketplaceFeatured}

const defaultTTL = 5 * time.Minute

// ErrMiss reports a key not present in the cache.
var ErrMiss = errors.New("cache miss")

// Cache is a thin JSON layer over redis. A nil *Cache is a valid no-op cache
// so the server can run without redis configured.
type Cache struct {
	client *redis.Client
}

func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *Cache) Get(ctx context.Context, key string, valuePtr any) error {
	if c == nil {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}
	return json.Unmarshal(data, valuePtr)
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, defaultTTL).Err()
}

// Invalidate drops the given keys. Errors are returned for logging but
// callers must never fail their operation on them.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping reports backend reachability for health checks.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("cache not configured")
	}
	return c.client.Ping(ctx).Err()
}
