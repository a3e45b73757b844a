package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goliatone/go-ils/core"
)

const DefaultKeyPrefix = "ils:cache:"

type Config struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	PoolSize  int    `json:"pool_size" yaml:"pool_size"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// Store keeps cache entries as JSON documents in redis. Redis expiry follows
// the entry lifetime, so stale keys disappear even when nobody reads them.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	owned  bool
}

// Open connects to redis and verifies the connection with a ping.
func Open(cfg Config) (*Store, error) {
	if cfg.Address == "" {
		cfg.Address = "localhost:6379"
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisstore: connect: %w", err)
	}

	store, err := New(rdb, cfg.KeyPrefix)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	store.owned = true
	return store, nil
}

// New wraps an existing client. An empty prefix uses DefaultKeyPrefix.
func New(rdb redis.UniversalClient, prefix string) (*Store, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redisstore: redis client is required")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}, nil
}

func (s *Store) Key(key string) string {
	return s.prefix + key
}

func (s *Store) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	if s == nil || s.rdb == nil {
		return core.CacheEntry{}, false, fmt.Errorf("redisstore: store is not configured")
	}
	data, err := s.rdb.Get(ctx, s.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.CacheEntry{}, false, nil
		}
		return core.CacheEntry{}, false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	var entry core.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return core.CacheEntry{}, false, fmt.Errorf("redisstore: decode %s: %w", key, err)
	}
	return entry, true, nil
}

func (s *Store) Set(ctx context.Context, entry core.CacheEntry) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redisstore: store is not configured")
	}
	if strings.TrimSpace(entry.Key) == "" {
		return fmt.Errorf("redisstore: entry key is required")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redisstore: encode %s: %w", entry.Key, err)
	}
	expiration := entry.Lifetime
	if expiration < 0 {
		expiration = 0
	}
	if err := s.rdb.Set(ctx, s.Key(entry.Key), data, expiration).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", entry.Key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redisstore: store is not configured")
	}
	if err := s.rdb.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redisstore: store is not configured")
	}
	return s.rdb.Ping(ctx).Err()
}

// Close releases the client only when Open created it.
func (s *Store) Close() error {
	if s == nil || s.rdb == nil || !s.owned {
		return nil
	}
	return s.rdb.Close()
}

var _ core.CacheBackend = (*Store)(nil)
