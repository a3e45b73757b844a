package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-ils/core"
	glog "github.com/goliatone/go-logger/glog"
)

type Option func(*TTLCache)

func WithNamespace(namespace string) Option {
	return func(c *TTLCache) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			c.namespace = namespace
		}
	}
}

func WithLifetime(lifetime time.Duration) Option {
	return func(c *TTLCache) {
		if lifetime > 0 {
			c.lifetime = lifetime
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(c *TTLCache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *TTLCache) {
		c.logger = glog.Ensure(logger)
	}
}

// TTLCache is a namespaced look-aside cache over an optional backend. With no
// backend every read is a miss and every write is dropped.
type TTLCache struct {
	backend   core.CacheBackend
	namespace string
	lifetime  time.Duration
	now       func() time.Time
	logger    core.Logger
}

func New(backend core.CacheBackend, opts ...Option) *TTLCache {
	c := &TTLCache{
		backend:   backend,
		namespace: "ils",
		lifetime:  core.DefaultCacheLifetime,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *TTLCache) Enabled() bool {
	return c != nil && c.backend != nil
}

func (c *TTLCache) Lifetime() time.Duration {
	if c == nil {
		return core.DefaultCacheLifetime
	}
	return c.lifetime
}

// Key returns the backend key used for a caller key.
func (c *TTLCache) Key(key string) string {
	namespace := "ils"
	if c != nil && c.namespace != "" {
		namespace = c.namespace
	}
	sum := sha256.Sum256([]byte(namespace + "|" + key))
	return namespace + "-" + hex.EncodeToString(sum[:16])
}

// Get returns the raw cached value. Expired entries are evicted.
func (c *TTLCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	if !c.Enabled() {
		return nil, false
	}
	fullKey := c.Key(key)
	entry, ok, err := c.backend.Get(ctx, fullKey)
	if err != nil {
		c.logger.Error("ils cache get failed", "key", fullKey, "error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	lifetime := entry.Lifetime
	if lifetime <= 0 {
		lifetime = c.lifetime
	}
	if entry.Expired(c.now(), lifetime) {
		c.evict(ctx, fullKey)
		return nil, false
	}
	return entry.Value, true
}

func (c *TTLCache) Put(ctx context.Context, key string, value any) {
	c.PutWithLifetime(ctx, key, value, 0)
}

// PutWithLifetime overwrites any prior entry. A non-positive lifetime uses the
// cache default.
func (c *TTLCache) PutWithLifetime(ctx context.Context, key string, value any, lifetime time.Duration) {
	if !c.Enabled() {
		return
	}
	fullKey := c.Key(key)
	encoded, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("ils cache encode failed", "key", fullKey, "error", err.Error())
		return
	}
	if lifetime <= 0 {
		lifetime = c.lifetime
	}
	entry := core.CacheEntry{
		Key:      fullKey,
		Value:    encoded,
		StoredAt: c.now(),
		Lifetime: lifetime,
	}
	if err := c.backend.Set(ctx, entry); err != nil {
		c.logger.Error("ils cache set failed", "key", fullKey, "error", err.Error())
	}
}

func (c *TTLCache) Remove(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	c.evict(ctx, c.Key(key))
}

func (c *TTLCache) evict(ctx context.Context, fullKey string) {
	if err := c.backend.Delete(ctx, fullKey); err != nil {
		c.logger.Error("ils cache delete failed", "key", fullKey, "error", err.Error())
	}
}

// Load decodes a cached value into T.
func Load[T any](ctx context.Context, c *TTLCache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("ils cache decode failed", "key", c.Key(key), "error", err.Error())
		var zero T
		return zero, false
	}
	return out, true
}
