// Package redis caches active links by slug in Redis so that redirects can
// skip the slug lookup in PostgreSQL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/ziplink/internal/entity"
)

const keyPrefix = "link:"

type LinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLinkCache(client *redis.Client, ttl time.Duration) *LinkCache {
	return &LinkCache{
		client: client,
		ttl:    ttl,
	}
}

func key(slug string) string {
	return keyPrefix + slug
}

// Get returns the cached link for slug. A miss is reported with ok == false and a nil error.
func (c *LinkCache) Get(ctx context.Context, slug string) (link *entity.Link, ok bool, err error) {
	const op = "adapter.cache.redis.LinkCache.Get"

	data, err := c.client.Get(ctx, key(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	link = new(entity.Link)
	if err := json.Unmarshal(data, link); err != nil {
		return nil, false, fmt.Errorf("%s: failed to decode cached link: %w", op, err)
	}

	return link, true, nil
}

func (c *LinkCache) Set(ctx context.Context, link *entity.Link) error {
	const op = "adapter.cache.redis.LinkCache.Set"

	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("%s: failed to encode link: %w", op, err)
	}

	if err := c.client.Set(ctx, key(link.Slug), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

func (c *LinkCache) Delete(ctx context.Context, slug string) error {
	const op = "adapter.cache.redis.LinkCache.Delete"

	if err := c.client.Del(ctx, key(slug)).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete key: %w", op, err)
	}

	return nil
}
