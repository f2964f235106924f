package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"camposocial/fault"

	"github.com/google/uuid"
	"github.com/infinitybotlist/eureka/jsonimpl"
	"github.com/redis/go-redis/v9"
)

// Cache stores rendered feed pages in redis. Instead of scanning for keys
// to delete on writes, every scope carries a generation counter that is
// baked into the page keys; bumping the counter orphans all cached pages
// for that scope at once and the orphans age out via TTL.
//
// A nil client disables caching entirely; every read is a miss and
// invalidation is a no-op.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb, ttl: 5 * time.Minute}
}

const globalScope = "global"

func genKey(scope string) string {
	return "feedgen:" + scope
}

func (c *Cache) generation(ctx context.Context, scope string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(scope)).Int64()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fault.Wrap(err, "failed to read feed generation")
	}

	return gen, nil
}

func (c *Cache) pageKey(scope string, gen int64, viewer uuid.UUID, cursor string, limit int) string {
	return fmt.Sprintf("feedpage:%s:%d:%s:%s:%d", scope, gen, viewer, cursor, limit)
}

// GetPage returns the cached page or nil on a miss. Cache failures are
// misses, not errors; the database is still there.
func (c *Cache) GetPage(ctx context.Context, scope string, viewer uuid.UUID, cursor string, limit int) *Page {
	if c.rdb == nil {
		return nil
	}

	gen, err := c.generation(ctx, scope)

	if err != nil {
		return nil
	}

	raw, err := c.rdb.Get(ctx, c.pageKey(scope, gen, viewer, cursor, limit)).Bytes()

	if err != nil {
		return nil
	}

	var page Page
	if err := jsonimpl.Unmarshal(raw, &page); err != nil {
		return nil
	}

	return &page
}

// SetPage caches a rendered page under the scope's current generation.
func (c *Cache) SetPage(ctx context.Context, scope string, viewer uuid.UUID, cursor string, limit int, page *Page) {
	if c.rdb == nil {
		return
	}

	gen, err := c.generation(ctx, scope)

	if err != nil {
		return
	}

	raw, err := jsonimpl.Marshal(page)

	if err != nil {
		return
	}

	c.rdb.Set(ctx, c.pageKey(scope, gen, viewer, cursor, limit), raw, c.ttl)
}

// InvalidateFeed bumps the global generation plus the author's own scope.
// content.Store calls this after every yap mutation.
func (c *Cache) InvalidateFeed(ctx context.Context, author uuid.UUID) error {
	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Incr(ctx, genKey(globalScope)).Err(); err != nil {
		return fault.Wrap(err, "failed to bump feed generation")
	}

	if author == uuid.Nil {
		return nil
	}

	if err := c.rdb.Incr(ctx, genKey("user:"+author.String())).Err(); err != nil {
		return fault.Wrap(err, "failed to bump user feed generation")
	}

	return nil
}
