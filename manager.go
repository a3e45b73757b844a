package ils

import (
	"context"
	"strings"
	"sync"

	ilscommand "github.com/goliatone/go-ils/command"
	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/query"
	"github.com/goliatone/go-ils/security"
	"github.com/goliatone/go-ils/transport"
	glog "github.com/goliatone/go-logger/glog"
)

type Option func(*Manager)

func WithRegistry(registry *Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(m *Manager) {
		m.deps.Logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(m *Manager) {
		m.deps.LoggerProvider = provider
	}
}

func WithHTTPService(service HTTPService) Option {
	return func(m *Manager) {
		m.deps.HTTPService = service
	}
}

func WithCacheBackend(backend CacheBackend) Option {
	return func(m *Manager) {
		m.deps.Cache = backend
	}
}

func WithTranslator(translator Translator) Option {
	return func(m *Manager) {
		m.deps.Translator = translator
	}
}

// WithCacheCipher seals cached values with cipher before they reach the
// cache backend.
func WithCacheCipher(cipher security.Cipher) Option {
	return func(m *Manager) {
		m.cipher = cipher
	}
}

// WithDefaults sets configuration layered beneath every driver config
// loaded from file.
func WithDefaults(defaults Config) Option {
	return func(m *Manager) {
		m.defaults = defaults.Clone()
	}
}

// Manager builds drivers from a registry with shared dependencies and keeps
// the last instance built under each name.
type Manager struct {
	registry  *Registry
	deps      Dependencies
	defaults  Config
	cipher    security.Cipher
	purger    ilscommand.ExpiredCachePurger
	err       error
	mu        sync.RWMutex
	instances map[string]Driver
}

func NewManager(opts ...Option) *Manager {
	manager := &Manager{
		registry:  DefaultRegistry(),
		instances: map[string]Driver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(manager)
		}
	}
	if manager.deps.Logger == nil && manager.deps.LoggerProvider == nil {
		manager.deps.Logger = glog.Nop()
	}
	if manager.deps.HTTPService == nil {
		manager.deps.HTTPService = transport.NewStdHTTPService(nil)
	}
	if purger, ok := manager.deps.Cache.(ilscommand.ExpiredCachePurger); ok {
		manager.purger = purger
	}
	if manager.cipher != nil && manager.deps.Cache != nil {
		sealed, err := security.NewEncryptedBackend(manager.deps.Cache, manager.cipher)
		if err != nil {
			manager.err = core.NewConfigError("ils: cache encryption: " + err.Error())
		} else {
			manager.deps.Cache = sealed
		}
	}
	return manager
}

func (m *Manager) Registry() *Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Manager) Dependencies() Dependencies {
	if m == nil {
		return Dependencies{}
	}
	return m.deps
}

// Driver builds, configures and initializes the named driver.
func (m *Manager) Driver(ctx context.Context, name string, cfg Config) (Driver, error) {
	if m == nil || m.registry == nil {
		return nil, core.NewInternalError("ils: manager is not configured")
	}
	if m.err != nil {
		return nil, m.err
	}
	registration, ok := m.registry.Lookup(name)
	if !ok {
		return nil, core.NewDriverNotFoundError(name)
	}
	instance, err := m.registry.Build(ctx, registration.Name, cfg, m.deps)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.instances[registration.Name] = instance
	m.mu.Unlock()
	return instance, nil
}

// DriverFromFile loads a YAML driver config and layers it as
// defaults < file < runtime before building the driver.
func (m *Manager) DriverFromFile(ctx context.Context, name string, path string, runtime Config) (Driver, error) {
	loaded, err := core.LoadConfigFile(path)
	if err != nil {
		return nil, core.NewConfigError("ils: load driver configuration failed: " + err.Error())
	}
	resolved, err := core.ResolveConfig(m.defaults, loaded, runtime)
	if err != nil {
		return nil, core.NewConfigError("ils: resolve driver configuration failed: " + err.Error())
	}
	return m.Driver(ctx, name, resolved)
}

// Instance returns the last driver built under name or one of its aliases.
func (m *Manager) Instance(name string) (Driver, bool) {
	if m == nil || m.registry == nil {
		return nil, false
	}
	key := strings.TrimSpace(strings.ToLower(name))
	if registration, ok := m.registry.Lookup(name); ok {
		key = registration.Name
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	instance, ok := m.instances[key]
	return instance, ok
}

type Commands struct {
	RenewToken *ilscommand.RenewTokenCommand
	ClearCache *ilscommand.ClearCacheCommand
	// PurgeExpiredCache is nil unless the cache backend can purge in bulk.
	PurgeExpiredCache *ilscommand.PurgeExpiredCacheCommand
}

// Commands returns go-command handlers bound to the manager's instances.
func (m *Manager) Commands() Commands {
	commands := Commands{
		RenewToken: ilscommand.NewRenewTokenCommand(m),
		ClearCache: ilscommand.NewClearCacheCommand(m),
	}
	if m.purger != nil {
		commands.PurgeExpiredCache = ilscommand.NewPurgeExpiredCacheCommand(m.purger)
	}
	return commands
}

type Queries struct {
	ListDrivers  *query.ListDriversQuery
	DriverConfig *query.DriverConfigQuery
}

// Queries returns go-command queriers over the registry and built instances.
func (m *Manager) Queries() Queries {
	return Queries{
		ListDrivers:  query.NewListDriversQuery(m.Registry(), m),
		DriverConfig: query.NewDriverConfigQuery(m),
	}
}

var (
	_ ilscommand.DriverLookup = (*Manager)(nil)
	_ query.InstanceLookup    = (*Manager)(nil)
)
