package translation

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplitDomain(t *testing.T) {
	cases := []struct {
		target string
		domain string
		key    string
	}{
		{target: "hold_place", domain: DefaultDomain, key: "hold_place"},
		{target: "ILSMessages::blocked", domain: "ILSMessages", key: "blocked"},
		{target: "::blocked", domain: DefaultDomain, key: "blocked"},
		{target: "A::b::c", domain: "A", key: "b::c"},
	}
	for _, tc := range cases {
		domain, key := SplitDomain(tc.target)
		if domain != tc.domain || key != tc.key {
			t.Fatalf("SplitDomain(%q) = %q, %q; want %q, %q", tc.target, domain, key, tc.domain, tc.key)
		}
	}
	if got := JoinDomain(DefaultDomain, "x"); got != "x" {
		t.Fatalf("expected default domain to be omitted, got %q", got)
	}
	if got := JoinDomain("Status", "x"); got != "Status::x" {
		t.Fatalf("unexpected joined key %q", got)
	}
}

func TestCatalogTranslateFallsBackToKey(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add("", "hold_place", "Place hold")
	catalog.Add("ILSMessages", "blocked", "Account blocked")

	if got := catalog.Translate("hold_place"); got != "Place hold" {
		t.Fatalf("expected default domain message, got %q", got)
	}
	if got := catalog.Translate("ILSMessages::blocked"); got != "Account blocked" {
		t.Fatalf("expected domain message, got %q", got)
	}
	if got := catalog.Translate("ILSMessages::missing"); got != "ILSMessages::missing" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if got := catalog.Translate("blocked"); got != "blocked" {
		t.Fatalf("expected domain isolation, got %q", got)
	}

	var nilCatalog *Catalog
	if got := nilCatalog.Translate("x"); got != "x" {
		t.Fatalf("expected nil catalog to return key, got %q", got)
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	catalog, err := LoadCatalogYAML(strings.NewReader(`
default:
  hold_place: Place hold
ILSMessages:
  blocked: "Account blocked: %%reason%%"
`))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if !reflect.DeepEqual(catalog.Domains(), []string{"ILSMessages", "default"}) {
		t.Fatalf("unexpected domains %v", catalog.Domains())
	}
	if message, ok := catalog.Lookup("ILSMessages", "blocked"); !ok || message != "Account blocked: %%reason%%" {
		t.Fatalf("unexpected lookup %q %t", message, ok)
	}

	empty, err := LoadCatalogYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if len(empty.Domains()) != 0 {
		t.Fatalf("expected empty catalog")
	}

	if _, err := LoadCatalogYAML(strings.NewReader("- not\n- a mapping\n")); err == nil {
		t.Fatalf("expected decode error for a sequence document")
	}
}

func TestLoadCatalogFileAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.yaml")
	if err := os.WriteFile(path, []byte("default:\n  due: Due\n  renew: Renew\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	loaded, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}

	base := NewCatalog()
	base.Add(DefaultDomain, "due", "Due date")
	base.Add(DefaultDomain, "fines", "Fines")
	base.Merge(loaded)

	if got := base.Translate("due"); got != "Due" {
		t.Fatalf("expected merged message to win, got %q", got)
	}
	if got := base.Translate("fines"); got != "Fines" {
		t.Fatalf("expected existing message to survive, got %q", got)
	}
	if got := base.Translate("renew"); got != "Renew" {
		t.Fatalf("expected merged message, got %q", got)
	}

	if _, err := LoadCatalogFile(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
