package driver

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/transport"
)

// plainDriver accepts configuration but no capabilities.
type plainDriver struct {
	configured core.Config
	initCalls  int
	initErr    error
}

func (d *plainDriver) SetConfig(cfg core.Config) error {
	d.configured = cfg
	return nil
}

func (d *plainDriver) Init(context.Context) error {
	d.initCalls++
	return d.initErr
}

type orderedDriver struct {
	*Base
	events []string
}

func newOrderedDriver() *orderedDriver {
	return &orderedDriver{Base: NewBase("ordered", nil)}
}

func (d *orderedDriver) SetLogger(logger core.Logger) {
	d.events = append(d.events, "logger")
	d.Base.SetLogger(logger)
}

func (d *orderedDriver) SetHTTPService(service core.HTTPService) {
	d.events = append(d.events, "http")
	d.Base.SetHTTPService(service)
}

func (d *orderedDriver) SetCacheBackend(backend core.CacheBackend) {
	d.events = append(d.events, "cache")
	d.Base.SetCacheBackend(backend)
}

func (d *orderedDriver) SetTranslator(translator core.Translator) {
	d.events = append(d.events, "translator")
	d.Base.SetTranslator(translator)
}

func (d *orderedDriver) SetConfig(cfg core.Config) error {
	d.events = append(d.events, "config")
	return d.Base.SetConfig(cfg)
}

func (d *orderedDriver) Init(context.Context) error {
	d.events = append(d.events, "init")
	return nil
}

func TestRegisterValidatesRegistration(t *testing.T) {
	registry := NewRegistry()
	factory := func() (core.Driver, error) { return &plainDriver{}, nil }

	cases := []struct {
		name         string
		registration Registration
		contains     string
	}{
		{name: "empty name", registration: Registration{Name: " ", Factory: factory}, contains: "name is required"},
		{name: "nil factory", registration: Registration{Name: "koha"}, contains: "factory"},
		{name: "unknown capability", registration: Registration{Name: "koha", Factory: factory, Requires: []Capability{"telepathy"}}, contains: "unknown capability"},
		{
			name:         "capability the type cannot accept",
			registration: Define("plain", func() *plainDriver { return &plainDriver{} }, CapabilityHTTP),
			contains:     "does not accept capability",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := registry.Register(tc.registration)
			if err == nil || !strings.Contains(err.Error(), tc.contains) {
				t.Fatalf("expected error containing %q, got %v", tc.contains, err)
			}
		})
	}
	if len(registry.Names()) != 0 {
		t.Fatalf("expected failed registrations to leave registry empty, got %v", registry.Names())
	}
}

func TestRegisterRejectsDuplicatesAndNormalizesNames(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Define(" Koha ", newOrderedDriver, CapabilityLogger, "LOGGER")); err != nil {
		t.Fatalf("register: %v", err)
	}
	registration, ok := registry.Lookup("KOHA")
	if !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	if registration.Name != "koha" || !reflect.DeepEqual(registration.Requires, []Capability{CapabilityLogger}) {
		t.Fatalf("unexpected normalized registration %+v", registration)
	}
	if err := registry.Register(Define("koha", newOrderedDriver)); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if err := registry.Register(Registration{
		Name:    "alma",
		Factory: func() (core.Driver, error) { return &plainDriver{}, nil },
		Aliases: []string{"Koha"},
	}); err == nil {
		t.Fatalf("expected alias clash with registered name")
	}
	if registry.Has("alma") {
		t.Fatalf("expected rejected registration not to be stored")
	}
}

func TestRegistryAliases(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(Registration{
		Name:    "kohaRest",
		Factory: func() (core.Driver, error) { return &plainDriver{}, nil },
		Aliases: []string{"koha-rest"},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Alias("KohaREST2", "koha-rest"); err != nil {
		t.Fatalf("alias through alias: %v", err)
	}
	for _, name := range []string{"kohárest", "nope"} {
		if registry.Has(name) {
			t.Fatalf("unexpected match for %q", name)
		}
	}
	for _, name := range []string{"KOHAREST", "koha-rest", "kohaRest2"} {
		registration, ok := registry.Lookup(name)
		if !ok || registration.Name != "koharest" {
			t.Fatalf("expected %q to resolve, got %+v %t", name, registration, ok)
		}
	}
	if err := registry.Alias("koha-rest", "koharest"); err == nil {
		t.Fatalf("expected duplicate alias error")
	}
	if err := registry.Alias("x", "missing"); !core.IsDriverNotFound(err) {
		t.Fatalf("expected driver not found, got %v", err)
	}
	if !reflect.DeepEqual(registry.Names(), []string{"koharest"}) {
		t.Fatalf("expected aliases excluded from names, got %v", registry.Names())
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"voyager", "alma", "koha"} {
		if err := registry.Register(Registration{Name: name, Factory: func() (core.Driver, error) { return &plainDriver{}, nil }}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if !reflect.DeepEqual(registry.Names(), []string{"alma", "koha", "voyager"}) {
		t.Fatalf("unexpected names %v", registry.Names())
	}
}

func TestBuildInjectsThenConfiguresThenInitializes(t *testing.T) {
	registry := NewRegistry()
	var built *orderedDriver
	if err := registry.Register(Define("ordered", func() *orderedDriver {
		built = newOrderedDriver()
		return built
	}, CapabilityLogger, CapabilityHTTP)); err != nil {
		t.Fatalf("register: %v", err)
	}

	logger := &captureLogger{}
	backend := newMemoryBackend()
	driver, err := registry.Build(context.Background(), "Ordered", core.Config{"settings": {"mode": "x"}}, Dependencies{
		Logger:      logger,
		HTTPService: transport.NewStdHTTPService(nil),
		Cache:       backend,
		Translator:  mapTranslator{},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if driver != core.Driver(built) {
		t.Fatalf("expected factory instance to be returned")
	}
	want := []string{"logger", "http", "cache", "translator", "config", "init"}
	if !reflect.DeepEqual(built.events, want) {
		t.Fatalf("unexpected lifecycle order %v", built.events)
	}
	if built.Config().String("settings", "mode") != "x" {
		t.Fatalf("expected config to be applied")
	}
	if !built.Cache().Enabled() || built.HTTPService() == nil {
		t.Fatalf("expected optional capabilities injected too")
	}
}

func TestBuildFailures(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry()
	initErr := errors.New("init failed")
	registrations := []Registration{
		Define("needs-http", NewNoILS, CapabilityHTTP),
		Define("rest", func() *API { return NewAPI("rest") }),
		{Name: "broken", Factory: func() (core.Driver, error) { return nil, errors.New("boom") }},
		{Name: "empty", Factory: func() (core.Driver, error) { return nil, nil }},
		{Name: "late", Factory: func() (core.Driver, error) { return &plainDriver{initErr: initErr}, nil }},
		{Name: "untyped", Factory: func() (core.Driver, error) { return &plainDriver{}, nil }, Requires: []Capability{CapabilityTranslator}},
	}
	for _, registration := range registrations {
		if err := registry.Register(registration); err != nil {
			t.Fatalf("register %s: %v", registration.Name, err)
		}
	}

	if _, err := registry.Build(ctx, "unknown", nil, Dependencies{}); !core.IsDriverNotFound(err) {
		t.Fatalf("expected driver not found, got %v", err)
	}
	if _, err := registry.Build(ctx, "needs-http", nil, Dependencies{}); !core.IsCapabilityError(err) {
		t.Fatalf("expected missing capability error, got %v", err)
	}
	if _, err := registry.Build(ctx, "rest", core.Config{}, Dependencies{}); !core.IsConfigError(err) {
		t.Fatalf("expected config error to be fatal, got %v", err)
	}
	if _, err := registry.Build(ctx, "broken", nil, Dependencies{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected factory error, got %v", err)
	}
	if _, err := registry.Build(ctx, "empty", nil, Dependencies{}); err == nil {
		t.Fatalf("expected nil driver error")
	}
	if _, err := registry.Build(ctx, "late", nil, Dependencies{}); !errors.Is(err, initErr) {
		t.Fatalf("expected init error, got %v", err)
	}
	_, err := registry.Build(ctx, "untyped", nil, Dependencies{Translator: mapTranslator{}})
	if !core.IsCapabilityError(err) {
		t.Fatalf("expected capability error for driver lacking the setter, got %v", err)
	}
}

func TestDependenciesProvides(t *testing.T) {
	deps := Dependencies{LoggerProvider: &namedProvider{}}
	if !deps.Provides(CapabilityLogger) {
		t.Fatalf("expected logger provider to satisfy logger capability")
	}
	for _, capability := range []Capability{CapabilityHTTP, CapabilityCache, CapabilityTranslator, "other"} {
		if deps.Provides(capability) {
			t.Fatalf("unexpected capability %q", capability)
		}
	}
}
