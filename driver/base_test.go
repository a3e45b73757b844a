package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-ils/cache"
	"github.com/goliatone/go-ils/core"
)

func TestBaseSetConfigRunsValidator(t *testing.T) {
	calls := 0
	base := NewBase("Koha", func(cfg core.Config) error {
		calls++
		return cfg.RequireKeys("Koha", "Catalog/host")
	})

	if err := base.SetConfig(core.Config{"Catalog": {"host": "koha.local"}}); err != nil {
		t.Fatalf("set config: %v", err)
	}
	err := base.SetConfig(core.Config{"Catalog": {}})
	if err == nil || !core.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected validator on every SetConfig, got %d calls", calls)
	}
	if got := base.Config().String("Catalog", "host"); got != "koha.local" {
		t.Fatalf("expected rejected config to keep previous value, got %q", got)
	}
	if base.Name() != "Koha" {
		t.Fatalf("unexpected name %q", base.Name())
	}
	if err := base.Init(context.Background()); err != nil {
		t.Fatalf("default init: %v", err)
	}
}

func TestBaseConfigIsCopied(t *testing.T) {
	base := NewBase("koha", nil)
	cfg := core.Config{"Catalog": {"host": "a"}}
	if err := base.SetConfig(cfg); err != nil {
		t.Fatalf("set config: %v", err)
	}
	cfg["Catalog"]["host"] = "b"
	got := base.Config()
	got["Catalog"]["host"] = "c"
	if value := base.Config().String("Catalog", "host"); value != "a" {
		t.Fatalf("expected stored config isolated from callers, got %q", value)
	}
}

func TestBaseLoggerResolution(t *testing.T) {
	base := NewBase("alma", nil)
	if base.Logger() == nil {
		t.Fatalf("expected nop logger before injection")
	}

	direct := &captureLogger{}
	base.SetLogger(direct)
	base.Logger().Debug("direct")
	if len(direct.byLevel("debug")) != 1 {
		t.Fatalf("expected direct logger to receive records")
	}

	named := &captureLogger{}
	provider := &namedProvider{logger: named}
	base.SetLoggerProvider(provider)
	base.Logger().Error("named")
	if len(named.byLevel("error")) != 1 {
		t.Fatalf("expected provider logger to win")
	}
	if len(provider.requested) == 0 || provider.requested[len(provider.requested)-1] != "ils.alma" {
		t.Fatalf("unexpected logger names %v", provider.requested)
	}
}

func TestBaseCacheUsesDriverNamespaceAndLifetime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	backend := newMemoryBackend()

	base := NewBase("koha", nil)
	if base.Cache().Enabled() {
		t.Fatalf("expected disabled cache without backend")
	}
	base.Cache().Put(ctx, "k", "ignored")

	base.SetCacheBackend(backend)
	base.SetClock(func() time.Time { return now })
	base.SetCacheLifetime(time.Minute)
	base.SetCacheLifetime(time.Millisecond)
	if got := base.Cache().Lifetime(); got != time.Minute {
		t.Fatalf("expected sub-second lifetime ignored, got %s", got)
	}

	base.Cache().Put(ctx, "holdings", []string{"a", "b"})
	other := cache.New(backend, cache.WithNamespace("alma"))
	if _, ok := other.Get(ctx, "holdings"); ok {
		t.Fatalf("expected namespaces to isolate drivers")
	}
	got, ok := cache.Load[[]string](ctx, base.Cache(), "holdings")
	if !ok || len(got) != 2 {
		t.Fatalf("unexpected cached value %v %t", got, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := base.Cache().Get(ctx, "holdings"); ok {
		t.Fatalf("expected entry to expire after the lifetime")
	}
	if backend.len() != 0 {
		t.Fatalf("expected expired entry evicted")
	}
}

func TestBaseTranslate(t *testing.T) {
	base := NewBase("koha", nil)
	if got := base.Translate("hold_place", nil, "Place hold"); got != "Place hold" {
		t.Fatalf("expected default without translator, got %q", got)
	}
	base.SetTranslator(mapTranslator{"ILSMessages::blocked": "Blocked: %%reason%%"})
	got := base.Translate("ILSMessages::blocked", map[string]string{"reason": "fines"}, "")
	if got != "Blocked: fines" {
		t.Fatalf("unexpected translation %q", got)
	}
}

func TestNilBaseIsSafe(t *testing.T) {
	var base *Base
	if err := base.SetConfig(core.Config{}); err == nil {
		t.Fatalf("expected error from nil base")
	}
	base.SetLogger(nil)
	base.SetCacheBackend(nil)
	base.Logger().Info("ignored")
	if base.Cache().Enabled() {
		t.Fatalf("expected disabled cache")
	}
	if base.Translate("k", nil, "") != "k" {
		t.Fatalf("expected key")
	}
}

func TestBaseValidatorErrorIsReturnedUnchanged(t *testing.T) {
	sentinel := errors.New("bad config")
	base := NewBase("x", func(core.Config) error { return sentinel })
	if err := base.SetConfig(nil); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
}
