package driver

import (
	"context"
	"reflect"
	"testing"

	"github.com/goliatone/go-ils/core"
)

func TestNoILSDefaults(t *testing.T) {
	d := NewNoILS()
	if err := d.SetConfig(nil); err != nil {
		t.Fatalf("expected any config accepted, got %v", err)
	}
	if d.OfflineMode() != "ils-offline" {
		t.Fatalf("unexpected offline mode %q", d.OfflineMode())
	}
	if d.LoginHidden() {
		t.Fatalf("expected login visible by default")
	}
	if _, ok := d.FunctionConfig("Holds"); ok {
		t.Fatalf("expected no function config")
	}
	if _, ok := d.CustomStatus(); ok {
		t.Fatalf("expected custom status disabled")
	}
}

func TestNoILSSettings(t *testing.T) {
	d := NewNoILS()
	d.SetTranslator(mapTranslator{"Checked Out": "On loan"})
	err := d.SetConfig(core.Config{
		"settings": {"mode": "ils-none", "hideLogin": "true", "useStatus": "custom"},
		"Holds":    {"HMACKeys": "id"},
		"Status":   {"status": "Checked Out", "reserve": "N", "availability": false},
	})
	if err != nil {
		t.Fatalf("set config: %v", err)
	}
	if d.OfflineMode() != "ils-none" || !d.LoginHidden() {
		t.Fatalf("unexpected settings mode=%q hidden=%t", d.OfflineMode(), d.LoginHidden())
	}
	holds, ok := d.FunctionConfig("Holds")
	if !ok || holds["HMACKeys"] != "id" {
		t.Fatalf("unexpected function config %v", holds)
	}
	status, ok := d.CustomStatus()
	if !ok {
		t.Fatalf("expected custom status")
	}
	want := map[string]string{"status": "On loan", "reserve": "N", "availability": "false"}
	if !reflect.DeepEqual(status, want) {
		t.Fatalf("unexpected status %v", status)
	}
}

func TestDefaultRegistryBuildsNoILS(t *testing.T) {
	registry := NewDefaultRegistry()
	if !reflect.DeepEqual(registry.Names(), []string{NoILSName}) {
		t.Fatalf("unexpected built-ins %v", registry.Names())
	}
	logger := &captureLogger{}
	built, err := registry.Build(context.Background(), "NoILS", core.Config{"settings": {"mode": "ils-none"}}, Dependencies{Logger: logger})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	noils, ok := built.(*NoILS)
	if !ok {
		t.Fatalf("unexpected driver type %T", built)
	}
	if noils.OfflineMode() != "ils-none" {
		t.Fatalf("expected config applied")
	}
	noils.Logger().Info("ready")
	if len(logger.byLevel("info")) != 1 {
		t.Fatalf("expected injected logger used")
	}

	if _, err := registry.Build(context.Background(), NoILSName, nil, Dependencies{}); !core.IsCapabilityError(err) {
		t.Fatalf("expected logger requirement, got %v", err)
	}
	if err := RegisterBuiltins(registry); err == nil {
		t.Fatalf("expected second builtin registration to fail")
	}
}
