package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func cacheEntryHandlers() repository.ModelHandlers[*cacheEntryRecord] {
	return repository.ModelHandlers[*cacheEntryRecord]{
		NewRecord: func() *cacheEntryRecord {
			return &cacheEntryRecord{}
		},
		GetID: func(record *cacheEntryRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *cacheEntryRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "cache_key"
		},
		GetIdentifierValue: func(record *cacheEntryRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.CacheKey)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
