package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-ils/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CacheStore persists cache entries in the ils_cache_entries table, one row
// per cache key.
type CacheStore struct {
	db   *bun.DB
	repo repository.Repository[*cacheEntryRecord]
	now  func() time.Time
}

func NewCacheStore(db *bun.DB) (*CacheStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*cacheEntryRecord](db, cacheEntryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid cache entry repository wiring: %w", err)
		}
	}
	return &CacheStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *CacheStore) Get(ctx context.Context, key string) (core.CacheEntry, bool, error) {
	if s == nil || s.repo == nil {
		return core.CacheEntry{}, false, fmt.Errorf("sqlstore: cache store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("cache_key", "=", strings.TrimSpace(key)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.CacheEntry{}, false, err
	}
	if len(records) == 0 {
		return core.CacheEntry{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

// Set inserts or replaces the row for entry.Key in one statement, relying on
// the unique cache_key index so concurrent writers never collide.
func (s *CacheStore) Set(ctx context.Context, entry core.CacheEntry) error {
	if s == nil || s.db == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: cache store is not configured")
	}
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return fmt.Errorf("sqlstore: cache key is required")
	}
	now := s.now()

	record := &cacheEntryRecord{ID: uuid.NewString(), CreatedAt: now}
	record.apply(entry, now)
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (cache_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("stored_at = EXCLUDED.stored_at").
		Set("lifetime_ms = EXCLUDED.lifetime_ms").
		Set("expires_at = EXCLUDED.expires_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: cache store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*cacheEntryRecord)(nil)).
		Where("cache_key = ?", strings.TrimSpace(key)).
		Exec(ctx)
	return err
}

// PurgeExpired removes rows whose lifetime ended at or before now and
// returns how many were deleted.
func (s *CacheStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: cache store is not configured")
	}
	if now.IsZero() {
		now = s.now()
	}
	result, err := s.db.NewDelete().
		Model((*cacheEntryRecord)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}
