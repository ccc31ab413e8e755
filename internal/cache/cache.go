// Package cache provides the two caching layers used by the service: a
// request-scoped memoization cache (ristretto, in-process) used to avoid
// repeating identical sub-engine work within one orchestrator call,
// and an optional cross-request response cache (Redis) for external
// language-model/vision completions. Both are read-through/write-through
// and have no authority over correctness: a miss, or the cache being
// disabled entirely, must never change a response, only its latency.
package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
)

// Memo is a request-scoped memoization cache. Callers scope keys with a
// request identifier (e.g. a UUID) so that entries from one request are
// never visible to another, even though the underlying ristretto instance
// is shared for efficiency.
type Memo struct {
	store *ristretto.Cache
}

// NewMemo constructs a Memo backed by a shared ristretto instance sized for
// many small short-lived entries.
func NewMemo() (*Memo, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 26, // 64 MiB
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Memo{store: store}, nil
}

// Get returns a previously memoized value for key, scoped by requestID.
func (m *Memo) Get(requestID, key string) (any, bool) {
	return m.store.Get(requestID + "/" + key)
}

// Set memoizes value for key, scoped by requestID, for ttl.
func (m *Memo) Set(requestID, key string, value any, cost int64, ttl time.Duration) {
	m.store.SetWithTTL(requestID+"/"+key, value, cost, ttl)
}

// Wait blocks until every Set call issued so far has been applied.
// Ristretto applies writes asynchronously through an internal buffer;
// callers that need a just-written value to be immediately visible (tests,
// mainly) should call Wait before the following Get.
func (m *Memo) Wait() {
	m.store.Wait()
}

// ResponseCache is the cross-request completion cache for external
// collaborators, keyed by a hash of the prompt and payload. A nil
// *ResponseCache is valid and always misses, matching a disabled cache
// when REDIS_URL is unset.
type ResponseCache struct {
	client *redis.Client
}

// NewResponseCache connects to redisURL. An empty redisURL disables the
// cache: the returned *ResponseCache is non-nil but every Get is a miss.
func NewResponseCache(redisURL string) (*ResponseCache, error) {
	if redisURL == "" {
		return &ResponseCache{}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &ResponseCache{client: redis.NewClient(opts)}, nil
}

// Enabled reports whether a real Redis connection backs this cache.
func (c *ResponseCache) Enabled() bool { return c != nil && c.client != nil }

// Get returns the cached completion for key, if any.
func (c *ResponseCache) Get(ctx context.Context, key string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value under key for ttl. A disabled cache silently no-ops.
func (c *ResponseCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	c.client.Set(ctx, key, value, ttl)
}
