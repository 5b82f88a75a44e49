package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "cinema"
	// genTTL outlives every page entry so a bumped generation is never
	// forgotten while pages of the previous one can still be read.
	genTTL = 24 * time.Hour
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "list_cache_requests_total",
		Help: "List page cache lookups by scope and result",
	},
	[]string{"scope", "result"},
)

// ListCache caches rendered list pages per user in Redis. Every key embeds
// the user's current generation; Invalidate bumps it, so a user never reads
// a page cached before their own last write.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// Get loads the cached page for (email, scope, key) into dest.
func (c *ListCache) Get(ctx context.Context, email, scope, key string, dest any) (bool, error) {
	gen, err := c.generation(ctx, email)
	if err != nil {
		cacheRequests.WithLabelValues(scope, "error").Inc()
		return false, err
	}

	raw, err := c.client.Get(ctx, pageKey(email, gen, scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheRequests.WithLabelValues(scope, "miss").Inc()
		return false, nil
	}
	if err != nil {
		cacheRequests.WithLabelValues(scope, "error").Inc()
		return false, fmt.Errorf("get cached page: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		cacheRequests.WithLabelValues(scope, "error").Inc()
		return false, fmt.Errorf("decode cached page: %w", err)
	}
	cacheRequests.WithLabelValues(scope, "hit").Inc()
	return true, nil
}

func (c *ListCache) Set(ctx context.Context, email, scope, key string, value any) error {
	gen, err := c.generation(ctx, email)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode page: %w", err)
	}
	if err := c.client.Set(ctx, pageKey(email, gen, scope, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached page: %w", err)
	}
	return nil
}

// Invalidate makes every page cached for email unreachable.
func (c *ListCache) Invalidate(ctx context.Context, email string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey(email))
	pipe.Expire(ctx, genKey(email), genTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bump cache generation: %w", err)
	}
	return nil
}

func (c *ListCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ListCache) generation(ctx context.Context, email string) (int64, error) {
	raw, err := c.client.Get(ctx, genKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get cache generation: %w", err)
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cache generation %q: %w", raw, err)
	}
	return gen, nil
}

func genKey(email string) string {
	return keyPrefix + ":gen:" + email
}

func pageKey(email string, gen int64, scope, key string) string {
	return fmt.Sprintf("%s:page:%s:%d:%s:%s", keyPrefix, email, gen, scope, key)
}

// Noop satisfies the same methods and never caches. It is used when Redis
// is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, string, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, string, string, any) error         { return nil }
func (Noop) Invalidate(context.Context, string) error                       { return nil }
