package sqlstore

import "github.com/goliatone/go-ils/core"

var _ core.CacheBackend = (*CacheStore)(nil)
