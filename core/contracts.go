package core

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPService builds a client for a single outbound call.
type HTTPService interface {
	CreateClient(rawURL string, method string, timeout time.Duration) (HTTPDoer, error)
}

// CacheBackend stores opaque cache entries. Implementations own their own
// synchronization; callers perform no locking.
type CacheBackend interface {
	Get(ctx context.Context, key string) (CacheEntry, bool, error)
	Set(ctx context.Context, entry CacheEntry) error
	Delete(ctx context.Context, key string) error
}

type Translator interface {
	Translate(key string) string
}

// Driver is the contract every registered ILS driver satisfies.
type Driver interface {
	SetConfig(cfg Config) error
	Init(ctx context.Context) error
}

type LoggerAware interface {
	SetLogger(logger Logger)
}

type LoggerProviderAware interface {
	SetLoggerProvider(provider LoggerProvider)
}

type HTTPServiceAware interface {
	SetHTTPService(service HTTPService)
}

type CacheAware interface {
	SetCacheBackend(backend CacheBackend)
}

type TranslatorAware interface {
	SetTranslator(translator Translator)
}

type CacheEntry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
	Lifetime time.Duration   `json:"lifetime"`
}

// Expired reports whether the entry is older than lifetime at now. A
// non-positive lifetime never expires.
func (e CacheEntry) Expired(now time.Time, lifetime time.Duration) bool {
	if lifetime <= 0 {
		return false
	}
	return now.Sub(e.StoredAt) >= lifetime
}
