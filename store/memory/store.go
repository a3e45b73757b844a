package memorystore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-ils/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const cacheKeyPrefix = "go-ils::cache_entry::v1"

var errEntryMissing = errors.New("memorystore: entry missing")

// Store keeps cache entries in a go-repository-cache service.
type Store struct {
	cache repositorycache.CacheService
}

func New(cacheService repositorycache.CacheService) (*Store, error) {
	if cacheService == nil {
		return nil, fmt.Errorf("memorystore: cache service is required")
	}
	return &Store{cache: cacheService}, nil
}

// NewDefault builds a Store on the default repository-cache configuration with
// the given TTL. A non-positive ttl keeps the library default.
func NewDefault(ttl time.Duration) (*Store, error) {
	config := repositorycache.DefaultConfig()
	if ttl > 0 {
		config.TTL = ttl
	}
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("memorystore: new cache service: %w", err)
	}
	return New(service)
}

// EntryCacheKey returns the service key for a backend key.
func EntryCacheKey(key string) string {
	return cacheKeyPrefix + "::" + strings.TrimSpace(key)
}

func (s *Store) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	if s == nil || s.cache == nil {
		return core.CacheEntry{}, false, fmt.Errorf("memorystore: store is not configured")
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, EntryCacheKey(key), func(context.Context) (core.CacheEntry, error) {
		return core.CacheEntry{}, errEntryMissing
	})
	if err != nil {
		if errors.Is(err, errEntryMissing) {
			return core.CacheEntry{}, false, nil
		}
		return core.CacheEntry{}, false, err
	}
	return cloneEntry(entry), true, nil
}

// Set replaces any prior entry for the key.
func (s *Store) Set(ctx context.Context, entry core.CacheEntry) error {
	if s == nil || s.cache == nil {
		return fmt.Errorf("memorystore: store is not configured")
	}
	if strings.TrimSpace(entry.Key) == "" {
		return fmt.Errorf("memorystore: entry key is required")
	}
	cacheKey := EntryCacheKey(entry.Key)
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	stored := cloneEntry(entry)
	_, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(context.Context) (core.CacheEntry, error) {
		return stored, nil
	})
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.cache == nil {
		return fmt.Errorf("memorystore: store is not configured")
	}
	return s.cache.Delete(ctx, EntryCacheKey(key))
}

// ReadThrough fronts a slower backend with a repository-cache service. Writes
// go to the base backend and invalidate the cached copy.
type ReadThrough struct {
	base  core.CacheBackend
	cache repositorycache.CacheService
}

func NewReadThrough(base core.CacheBackend, cacheService repositorycache.CacheService) (*ReadThrough, error) {
	if base == nil {
		return nil, fmt.Errorf("memorystore: base cache backend is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("memorystore: cache service is required")
	}
	return &ReadThrough{base: base, cache: cacheService}, nil
}

func (r *ReadThrough) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	if r == nil || r.base == nil || r.cache == nil {
		return core.CacheEntry{}, false, fmt.Errorf("memorystore: read-through backend is not configured")
	}
	entry, err := repositorycache.GetOrFetch(ctx, r.cache, EntryCacheKey(key), func(ctx context.Context) (core.CacheEntry, error) {
		fetched, ok, fetchErr := r.base.Get(ctx, key)
		if fetchErr != nil {
			return core.CacheEntry{}, fetchErr
		}
		if !ok {
			return core.CacheEntry{}, errEntryMissing
		}
		return cloneEntry(fetched), nil
	})
	if err != nil {
		if errors.Is(err, errEntryMissing) {
			return core.CacheEntry{}, false, nil
		}
		return core.CacheEntry{}, false, err
	}
	return cloneEntry(entry), true, nil
}

func (r *ReadThrough) Set(ctx context.Context, entry core.CacheEntry) error {
	if r == nil || r.base == nil || r.cache == nil {
		return fmt.Errorf("memorystore: read-through backend is not configured")
	}
	if err := r.base.Set(ctx, entry); err != nil {
		return err
	}
	return r.cache.Delete(ctx, EntryCacheKey(entry.Key))
}

func (r *ReadThrough) Delete(ctx context.Context, key string) error {
	if r == nil || r.base == nil || r.cache == nil {
		return fmt.Errorf("memorystore: read-through backend is not configured")
	}
	if err := r.base.Delete(ctx, key); err != nil {
		return err
	}
	return r.cache.Delete(ctx, EntryCacheKey(key))
}

func cloneEntry(entry core.CacheEntry) core.CacheEntry {
	cloned := entry
	cloned.Value = append([]byte(nil), entry.Value...)
	cloned.StoredAt = entry.StoredAt.UTC()
	return cloned
}

var (
	_ core.CacheBackend = (*Store)(nil)
	_ core.CacheBackend = (*ReadThrough)(nil)
)
