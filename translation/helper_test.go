package translation

import "testing"

type recordingTranslator struct {
	messages map[string]string
	keys     []string
}

func (r *recordingTranslator) Translate(key string) string {
	r.keys = append(r.keys, key)
	if message, ok := r.messages[key]; ok {
		return message
	}
	return key
}

func TestHelperTranslateUsesTranslator(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add(DefaultDomain, "items_due", "%%count%% items due")
	catalog.Add("ILSMessages", "blocked", "Blocked: %%reason%%")
	helper := NewHelper(catalog)

	if got := helper.Translate("items_due", map[string]string{"count": "3"}, ""); got != "3 items due" {
		t.Fatalf("unexpected translation %q", got)
	}
	if got := helper.Translate("ILSMessages::blocked", map[string]string{"%%reason%%": "fines"}, ""); got != "Blocked: fines" {
		t.Fatalf("expected delimited token names to work, got %q", got)
	}
}

func TestHelperTranslateDefaults(t *testing.T) {
	helper := NewHelper(NewCatalog())

	if got := helper.Translate("ILSMessages::unknown", nil, "Fallback text"); got != "Fallback text" {
		t.Fatalf("expected default, got %q", got)
	}
	if got := helper.Translate("ILSMessages::unknown", nil, ""); got != "unknown" {
		t.Fatalf("expected bare key, got %q", got)
	}
	if got := helper.Translate("missing", map[string]string{"n": "2"}, "%%n%% left"); got != "2 left" {
		t.Fatalf("expected tokens applied to default, got %q", got)
	}
}

func TestHelperWithoutTranslator(t *testing.T) {
	var helper Helper
	if got := helper.Translate("hold_place", nil, "Place hold"); got != "Place hold" {
		t.Fatalf("expected default, got %q", got)
	}
	if got := helper.Translate("hold_place", nil, ""); got != "hold_place" {
		t.Fatalf("expected key, got %q", got)
	}
}

func TestHelperSanitizesKeys(t *testing.T) {
	translator := &recordingTranslator{messages: map[string]string{"Status::lost_28missing_29": "Lost"}}
	helper := NewHelper(translator)

	if got := helper.Translate("Status::lost(missing)", nil, ""); got != "Lost" {
		t.Fatalf("unexpected translation %q", got)
	}
	if len(translator.keys) != 1 || translator.keys[0] != "Status::lost_28missing_29" {
		t.Fatalf("unexpected lookup keys %v", translator.keys)
	}
	if got := SanitizeKey("a!b?c|d"); got != "a_21b_3Fc_7Cd" {
		t.Fatalf("unexpected sanitized key %q", got)
	}
}

func TestHelperFallbackDomains(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add("Shared", "renew", "Renew")
	helper := NewHelper(catalog, WithFallbackDomains(" ", "Other", "Shared"))

	if got := helper.Translate("Koha::renew", nil, ""); got != "Renew" {
		t.Fatalf("expected fallback domain message, got %q", got)
	}
	if got := helper.Translate("Koha::cancel", nil, "Cancel"); got != "Cancel" {
		t.Fatalf("expected default after all domains miss, got %q", got)
	}
}

func TestHelperDebugRendering(t *testing.T) {
	helper := NewHelper(NewCatalog(), WithDebug())

	if got := helper.Translate("hold_place", nil, "x"); got != "*hold_place*" {
		t.Fatalf("unexpected debug output %q", got)
	}
	got := helper.Translate("ILSMessages::blocked", map[string]string{"b": "2", "a": "1"}, "")
	if got != "*ILSMessages::blocked | [a = 1, b = 2]*" {
		t.Fatalf("unexpected debug output %q", got)
	}
}

func TestHelperTranslateWithPrefix(t *testing.T) {
	catalog := NewCatalog()
	catalog.Add("Status", "status_available", "On shelf")
	helper := NewHelper(catalog)

	if got := helper.TranslateWithPrefix("status_", "Status::available", nil, ""); got != "On shelf" {
		t.Fatalf("unexpected prefixed translation %q", got)
	}
	if got := helper.TranslateWithPrefix("status_", "Status::lost", nil, ""); got != "lost" {
		t.Fatalf("expected unprefixed key as default, got %q", got)
	}
}
