package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-ils/core"
)

type Capability string

const (
	CapabilityLogger     Capability = "logger"
	CapabilityHTTP       Capability = "http"
	CapabilityCache      Capability = "cache"
	CapabilityTranslator Capability = "translator"
)

func KnownCapabilities() []Capability {
	return []Capability{CapabilityCache, CapabilityHTTP, CapabilityLogger, CapabilityTranslator}
}

// Factory builds a fresh, unconfigured driver instance.
type Factory func() (core.Driver, error)

type Registration struct {
	Name     string
	Factory  Factory
	Requires []Capability
	Aliases  []string

	probe any
}

// Define builds a registration whose capability conformance can be checked
// when it is registered, before any instance exists.
func Define[T core.Driver](name string, factory func() T, requires ...Capability) Registration {
	var zero T
	registration := Registration{
		Name:     name,
		Requires: requires,
		probe:    zero,
	}
	if factory != nil {
		registration.Factory = func() (core.Driver, error) {
			return factory(), nil
		}
	}
	return registration
}

// Dependencies are the shared capabilities injected into built drivers.
type Dependencies struct {
	Logger         core.Logger
	LoggerProvider core.LoggerProvider
	HTTPService    core.HTTPService
	Cache          core.CacheBackend
	Translator     core.Translator
}

func (d Dependencies) Provides(capability Capability) bool {
	switch capability {
	case CapabilityLogger:
		return d.Logger != nil || d.LoggerProvider != nil
	case CapabilityHTTP:
		return d.HTTPService != nil
	case CapabilityCache:
		return d.Cache != nil
	case CapabilityTranslator:
		return d.Translator != nil
	default:
		return false
	}
}

// Registry maps normalized driver names and aliases to registrations.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]Registration
	aliases       map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		registrations: map[string]Registration{},
		aliases:       map[string]string{},
	}
}

func (r *Registry) Register(registration Registration) error {
	if r == nil {
		return fmt.Errorf("driver: registry is nil")
	}
	name := normalizeName(registration.Name)
	if name == "" {
		return fmt.Errorf("driver: name is required")
	}
	if registration.Factory == nil {
		return fmt.Errorf("driver: factory for %q is nil", name)
	}
	requires, err := normalizeCapabilities(registration.Requires)
	if err != nil {
		return fmt.Errorf("driver: %q: %w", name, err)
	}
	if registration.probe != nil {
		if err := checkAware(registration.probe, requires); err != nil {
			return fmt.Errorf("driver: %q: %w", name, err)
		}
	}
	registration.Name = name
	registration.Requires = requires

	aliases := make([]string, 0, len(registration.Aliases))
	for _, alias := range registration.Aliases {
		if alias = normalizeName(alias); alias != "" && alias != name {
			aliases = append(aliases, alias)
		}
	}
	registration.Aliases = aliases

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.takenLocked(name) {
		return fmt.Errorf("driver: %q already registered", name)
	}
	for _, alias := range aliases {
		if r.takenLocked(alias) {
			return fmt.Errorf("driver: alias %q already registered", alias)
		}
	}
	r.registrations[name] = registration
	for _, alias := range aliases {
		r.aliases[alias] = name
	}
	return nil
}

// Alias makes alias resolve to an already registered driver.
func (r *Registry) Alias(alias string, target string) error {
	if r == nil {
		return fmt.Errorf("driver: registry is nil")
	}
	alias = normalizeName(alias)
	target = normalizeName(target)
	if alias == "" || target == "" {
		return fmt.Errorf("driver: alias and target are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if canonical, ok := r.aliases[target]; ok {
		target = canonical
	}
	if _, ok := r.registrations[target]; !ok {
		return core.NewDriverNotFoundError(target)
	}
	if r.takenLocked(alias) {
		return fmt.Errorf("driver: alias %q already registered", alias)
	}
	r.aliases[alias] = target
	return nil
}

func (r *Registry) Lookup(name string) (Registration, bool) {
	if r == nil {
		return Registration{}, false
	}
	name = normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	registration, ok := r.registrations[name]
	return registration, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names lists canonical driver names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.registrations))
	for name := range r.registrations {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Aliases lists every alias resolving to the named driver, sorted.
func (r *Registry) Aliases(name string) []string {
	registration, ok := r.Lookup(name)
	if !ok {
		return []string{}
	}
	r.mu.RLock()
	aliases := []string{}
	for alias, target := range r.aliases {
		if target == registration.Name {
			aliases = append(aliases, alias)
		}
	}
	r.mu.RUnlock()
	sort.Strings(aliases)
	return aliases
}

// Build creates the named driver, injects the dependencies it is aware of,
// then configures and initializes it. Configuration errors are returned
// as-is and no driver is produced.
func (r *Registry) Build(ctx context.Context, name string, cfg core.Config, deps Dependencies) (core.Driver, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	registration, ok := r.Lookup(name)
	if !ok {
		return nil, core.NewDriverNotFoundError(name)
	}
	for _, capability := range registration.Requires {
		if !deps.Provides(capability) {
			return nil, core.NewCapabilityError("ils: required capability not provided", map[string]any{
				"driver":     registration.Name,
				"capability": string(capability),
			})
		}
	}

	instance, err := registration.Factory()
	if err != nil {
		return nil, fmt.Errorf("driver: build %q: %w", registration.Name, err)
	}
	if instance == nil {
		return nil, core.NewInternalError("driver: factory returned nil driver: " + registration.Name)
	}
	if err := checkAware(instance, registration.Requires); err != nil {
		return nil, core.NewCapabilityError(err.Error(), map[string]any{"driver": registration.Name})
	}

	inject(instance, deps)
	if err := instance.SetConfig(cfg.Clone()); err != nil {
		return nil, err
	}
	if err := instance.Init(ctx); err != nil {
		return nil, fmt.Errorf("driver: init %q: %w", registration.Name, err)
	}
	return instance, nil
}

func (r *Registry) takenLocked(name string) bool {
	if _, ok := r.registrations[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

func inject(instance any, deps Dependencies) {
	if aware, ok := instance.(core.LoggerProviderAware); ok && deps.LoggerProvider != nil {
		aware.SetLoggerProvider(deps.LoggerProvider)
	}
	if aware, ok := instance.(core.LoggerAware); ok && deps.Logger != nil {
		aware.SetLogger(deps.Logger)
	}
	if aware, ok := instance.(core.HTTPServiceAware); ok && deps.HTTPService != nil {
		aware.SetHTTPService(deps.HTTPService)
	}
	if aware, ok := instance.(core.CacheAware); ok && deps.Cache != nil {
		aware.SetCacheBackend(deps.Cache)
	}
	if aware, ok := instance.(core.TranslatorAware); ok && deps.Translator != nil {
		aware.SetTranslator(deps.Translator)
	}
}

func checkAware(instance any, requires []Capability) error {
	for _, capability := range requires {
		var ok bool
		switch capability {
		case CapabilityLogger:
			_, ok = instance.(core.LoggerAware)
		case CapabilityHTTP:
			_, ok = instance.(core.HTTPServiceAware)
		case CapabilityCache:
			_, ok = instance.(core.CacheAware)
		case CapabilityTranslator:
			_, ok = instance.(core.TranslatorAware)
		}
		if !ok {
			return fmt.Errorf("driver %T does not accept capability %q", instance, capability)
		}
	}
	return nil
}

func normalizeCapabilities(values []Capability) ([]Capability, error) {
	seen := map[Capability]struct{}{}
	out := make([]Capability, 0, len(values))
	for _, value := range values {
		capability := Capability(strings.TrimSpace(strings.ToLower(string(value))))
		known := false
		for _, candidate := range KnownCapabilities() {
			if candidate == capability {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown capability %q", value)
		}
		if _, ok := seen[capability]; ok {
			continue
		}
		seen[capability] = struct{}{}
		out = append(out, capability)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
