// Package resolve adapts the persistence repositories to the lookup
// contracts of the policy engine, with a short-TTL Redis read-through
// cache in front. Entries are never invalidated on write; the TTL bounds
// how stale a policy decision's snapshot can be.
package resolve

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds snapshot staleness for policy decisions.
const DefaultTTL = 10 * time.Second

type cache struct {
	client *redis.Client
	ttl    time.Duration
}

func newCache(client *redis.Client, ttl time.Duration) *cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &cache{client: client, ttl: ttl}
}

// get unmarshals the cached entry into target. A nil client, a missing
// key and a Redis failure all report a miss; the caller falls through to
// the repository either way.
func (c *cache) get(ctx context.Context, key string, target any) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, target) == nil
}

func (c *cache) set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, payload, c.ttl).Err()
}
