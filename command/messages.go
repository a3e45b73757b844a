package command

import (
	"strings"
	"time"
)

const (
	TypeRenewToken        = "ils.command.token.renew"
	TypeClearCache        = "ils.command.cache.clear"
	TypePurgeExpiredCache = "ils.command.cache.purge_expired"
)

type RenewTokenMessage struct {
	Driver string
}

func (RenewTokenMessage) Type() string { return TypeRenewToken }

func (m RenewTokenMessage) Validate() error {
	if strings.TrimSpace(m.Driver) == "" {
		return commandValidationError("driver", "driver name is required")
	}
	return nil
}

// ClearCacheMessage removes the given keys from a driver's cache namespace.
type ClearCacheMessage struct {
	Driver string
	Keys   []string
}

func (ClearCacheMessage) Type() string { return TypeClearCache }

func (m ClearCacheMessage) Validate() error {
	if strings.TrimSpace(m.Driver) == "" {
		return commandValidationError("driver", "driver name is required")
	}
	if len(m.Keys) == 0 {
		return commandValidationError("keys", "at least one cache key is required")
	}
	for _, key := range m.Keys {
		if strings.TrimSpace(key) == "" {
			return commandValidationError("keys", "cache keys must not be empty")
		}
	}
	return nil
}

// PurgeExpiredCacheMessage deletes persisted entries expired at Before; a
// zero Before means now.
type PurgeExpiredCacheMessage struct {
	Before time.Time
}

func (PurgeExpiredCacheMessage) Type() string { return TypePurgeExpiredCache }

func (PurgeExpiredCacheMessage) Validate() error { return nil }

type RenewTokenResult struct {
	Driver    string
	RenewedAt time.Time
}

type ClearCacheResult struct {
	Driver  string
	Removed []string
}

type PurgeExpiredCacheResult struct {
	Purged int64
}
