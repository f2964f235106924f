package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"camposocial/fault"

	"github.com/google/uuid"
	"github.com/infinitybotlist/eureka/jsonimpl"
	"github.com/redis/go-redis/v9"
)

// Cache keeps rendered thread pages in redis, keyed by the normalized
// pair so both participants hit the same entries. A per-pair generation
// counter invalidates all of a conversation's pages in one INCR; stale
// pages age out via TTL. A nil client disables caching.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb, ttl: 2 * time.Minute}
}

// pairScope orders the two ids so (a,b) and (b,a) share one scope.
func pairScope(a, b uuid.UUID) string {
	if strings.Compare(a.String(), b.String()) > 0 {
		a, b = b, a
	}

	return a.String() + ":" + b.String()
}

func (c *Cache) generation(ctx context.Context, scope string) (int64, error) {
	gen, err := c.rdb.Get(ctx, "chatgen:"+scope).Int64()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fault.Wrap(err, "failed to read chat generation")
	}

	return gen, nil
}

func (c *Cache) pageKey(scope string, gen int64, cursor string) string {
	return fmt.Sprintf("chatpage:%s:%d:%s", scope, gen, cursor)
}

// GetThread returns the cached page or nil on a miss; redis trouble is a
// miss.
func (c *Cache) GetThread(ctx context.Context, a, b uuid.UUID, cursor string) *Page {
	if c.rdb == nil {
		return nil
	}

	scope := pairScope(a, b)
	gen, err := c.generation(ctx, scope)

	if err != nil {
		return nil
	}

	raw, err := c.rdb.Get(ctx, c.pageKey(scope, gen, cursor)).Bytes()

	if err != nil {
		return nil
	}

	var page Page
	if err := jsonimpl.Unmarshal(raw, &page); err != nil {
		return nil
	}

	return &page
}

// SetThread caches a page under the pair's current generation.
func (c *Cache) SetThread(ctx context.Context, a, b uuid.UUID, cursor string, page *Page) {
	if c.rdb == nil {
		return
	}

	scope := pairScope(a, b)
	gen, err := c.generation(ctx, scope)

	if err != nil {
		return
	}

	raw, err := jsonimpl.Marshal(page)

	if err != nil {
		return
	}

	c.rdb.Set(ctx, c.pageKey(scope, gen, cursor), raw, c.ttl)
}

// InvalidateThread bumps the pair's generation. Best effort; a failed bump
// only means a few minutes of staleness.
func (c *Cache) InvalidateThread(ctx context.Context, a, b uuid.UUID) {
	if c.rdb == nil {
		return
	}

	c.rdb.Incr(ctx, "chatgen:"+pairScope(a, b))
}

// Thread page cursors, same keyset shape the feed uses.

type cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func encodeCursor(ts time.Time, id uuid.UUID) string {
	raw := ts.UTC().Format(time.RFC3339Nano) + "|" + id.String()
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (*cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)

	if err != nil {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	parts := strings.SplitN(string(raw), "|", 2)

	if len(parts) != 2 {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	ts, err := time.Parse(time.RFC3339Nano, parts[0])

	if err != nil {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	id, err := uuid.Parse(parts[1])

	if err != nil {
		return nil, fault.New(fault.Validation, "Invalid page cursor")
	}

	return &cursor{CreatedAt: ts, ID: id}, nil
}
