package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-ils/core"
	"github.com/uptrace/bun"
)

type cacheEntryRecord struct {
	bun.BaseModel `bun:"table:ils_cache_entries,alias:ce"`

	ID         string     `bun:"id,pk"`
	CacheKey   string     `bun:"cache_key,notnull"`
	Value      string     `bun:"value,notnull"`
	StoredAt   time.Time  `bun:"stored_at,notnull"`
	LifetimeMS int64      `bun:"lifetime_ms,notnull"`
	ExpiresAt  *time.Time `bun:"expires_at,nullzero"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *cacheEntryRecord) apply(entry core.CacheEntry, now time.Time) {
	r.CacheKey = entry.Key
	r.Value = string(entry.Value)
	if r.Value == "" {
		r.Value = "null"
	}
	r.StoredAt = entry.StoredAt.UTC()
	if r.StoredAt.IsZero() {
		r.StoredAt = now
	}
	r.LifetimeMS = entry.Lifetime.Milliseconds()
	r.ExpiresAt = nil
	if entry.Lifetime > 0 {
		expiresAt := r.StoredAt.Add(entry.Lifetime)
		r.ExpiresAt = &expiresAt
	}
	r.UpdatedAt = now
}

func (r *cacheEntryRecord) toDomain() core.CacheEntry {
	if r == nil {
		return core.CacheEntry{}
	}
	return core.CacheEntry{
		Key:      r.CacheKey,
		Value:    json.RawMessage(r.Value),
		StoredAt: r.StoredAt.UTC(),
		Lifetime: time.Duration(r.LifetimeMS) * time.Millisecond,
	}
}
