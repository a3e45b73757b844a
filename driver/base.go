package driver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-ils/adapters/gologger"
	"github.com/goliatone/go-ils/cache"
	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/translation"
)

// ConfigValidator inspects a configuration before a driver accepts it.
type ConfigValidator func(cfg core.Config) error

// Base carries the state every driver shares: configuration, a named logger,
// translation and a TTL cache over the injected backend. Concrete drivers
// embed *Base and add their own operations.
type Base struct {
	mu             sync.RWMutex
	name           string
	config         core.Config
	validate       ConfigValidator
	loggerProvider core.LoggerProvider
	rawLogger      core.Logger
	logger         core.Logger
	httpService    core.HTTPService
	cacheBackend   core.CacheBackend
	cacheLifetime  time.Duration
	cacheScope     string
	cache          *cache.TTLCache
	translator     translation.Helper
	now            func() time.Time
}

func NewBase(name string, validate ConfigValidator) *Base {
	name = strings.TrimSpace(name)
	base := &Base{
		name:          name,
		config:        core.Config{},
		validate:      validate,
		cacheLifetime: core.DefaultCacheLifetime,
	}
	base.logger = gologger.ForDriver(name, nil, nil)
	base.rebuildCacheLocked()
	return base
}

func (b *Base) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// SetConfig runs the validator hook and stores a copy of cfg. A rejected
// configuration leaves the previous one in place.
func (b *Base) SetConfig(cfg core.Config) error {
	if b == nil {
		return core.NewInternalError("driver: base is nil")
	}
	copied := cfg.Clone()
	if b.validate != nil {
		if err := b.validate(copied); err != nil {
			return err
		}
	}
	b.mu.Lock()
	b.config = copied
	b.mu.Unlock()
	return nil
}

func (b *Base) Config() core.Config {
	if b == nil {
		return core.Config{}
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.Clone()
}

func (b *Base) Init(context.Context) error {
	return nil
}

func (b *Base) SetLogger(logger core.Logger) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rawLogger = logger
	b.resolveLoggerLocked()
}

func (b *Base) SetLoggerProvider(provider core.LoggerProvider) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loggerProvider = provider
	b.resolveLoggerLocked()
}

func (b *Base) Logger() core.Logger {
	if b == nil {
		return gologger.ForDriver("", nil, nil)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logger
}

func (b *Base) SetHTTPService(service core.HTTPService) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.httpService = service
	b.mu.Unlock()
}

func (b *Base) HTTPService() core.HTTPService {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.httpService
}

func (b *Base) SetCacheBackend(backend core.CacheBackend) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheBackend = backend
	b.rebuildCacheLocked()
}

// SetCacheLifetime changes the default lifetime of cached entries. Values
// below one second keep the current lifetime.
func (b *Base) SetCacheLifetime(lifetime time.Duration) {
	if b == nil || lifetime < time.Second {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheLifetime = lifetime
	b.rebuildCacheLocked()
}

// SetCacheScope separates the cache entries of instances of the same driver
// that share one backend. The namespace becomes "name.scope".
func (b *Base) SetCacheScope(scope string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cacheScope = strings.TrimSpace(scope)
	b.rebuildCacheLocked()
}

// Cache never returns nil; without a backend every operation is a no-op.
func (b *Base) Cache() *cache.TTLCache {
	if b == nil {
		return cache.New(nil)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cache
}

// SetClock replaces the time source used for cache expiry.
func (b *Base) SetClock(now func() time.Time) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.rebuildCacheLocked()
}

func (b *Base) clock() func() time.Time {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.now
}

func (b *Base) SetTranslator(translator core.Translator) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.translator = translation.NewHelper(translator)
	b.mu.Unlock()
}

func (b *Base) Translate(key string, tokens map[string]string, def string) string {
	if b == nil {
		return translation.Helper{}.Translate(key, tokens, def)
	}
	b.mu.RLock()
	helper := b.translator
	b.mu.RUnlock()
	return helper.Translate(key, tokens, def)
}

func (b *Base) resolveLoggerLocked() {
	b.logger = gologger.ForDriver(b.name, b.loggerProvider, b.rawLogger)
	b.rebuildCacheLocked()
}

func (b *Base) rebuildCacheLocked() {
	namespace := b.name
	if b.cacheScope != "" {
		namespace += "." + b.cacheScope
	}
	opts := []cache.Option{
		cache.WithNamespace(namespace),
		cache.WithLifetime(b.cacheLifetime),
		cache.WithLogger(b.logger),
	}
	if b.now != nil {
		opts = append(opts, cache.WithNow(b.now))
	}
	b.cache = cache.New(b.cacheBackend, opts...)
}
