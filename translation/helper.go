package translation

import (
	"sort"
	"strings"

	"github.com/goliatone/go-ils/core"
)

const tokenDelimiter = "%%"

var keySanitizer = strings.NewReplacer(
	"(", "_28",
	")", "_29",
	"!", "_21",
	"?", "_3F",
	"|", "_7C",
)

// SanitizeKey replaces characters that translation catalogs do not accept in
// message keys with escape codes.
func SanitizeKey(key string) string {
	return keySanitizer.Replace(key)
}

type HelperOption func(*Helper)

// WithDebug renders keys and tokens instead of translating them.
func WithDebug() HelperOption {
	return func(h *Helper) {
		h.debug = true
	}
}

// WithFallbackDomains lists domains tried in order when the requested domain
// has no message.
func WithFallbackDomains(domains ...string) HelperOption {
	return func(h *Helper) {
		for _, domain := range domains {
			if domain = strings.TrimSpace(domain); domain != "" {
				h.fallbackDomains = append(h.fallbackDomains, domain)
			}
		}
	}
}

// Helper wraps an optional core.Translator with default handling and token
// substitution. A zero Helper returns defaults untranslated.
type Helper struct {
	translator      core.Translator
	debug           bool
	fallbackDomains []string
}

func NewHelper(translator core.Translator, opts ...HelperOption) Helper {
	helper := Helper{translator: translator}
	for _, opt := range opts {
		if opt != nil {
			opt(&helper)
		}
	}
	return helper
}

func (h Helper) Translator() core.Translator {
	return h.translator
}

// Translate resolves target ("key" or "Domain::key"). When no translation
// exists the default is used, or the bare key when the default is empty.
// Tokens replace %%name%% placeholders in the result.
func (h Helper) Translate(target string, tokens map[string]string, def string) string {
	domain, str := SplitDomain(target)
	if h.debug {
		return debugTranslation(domain, str, tokens)
	}

	msg, ok := h.lookup(domain, str)
	for _, fallback := range h.fallbackDomains {
		if ok {
			break
		}
		msg, ok = h.lookup(fallback, str)
	}
	if !ok {
		msg = def
		if msg == "" {
			msg = str
		}
	}
	return substitute(msg, tokens)
}

// TranslateWithPrefix prepends prefix to the key and defaults to the
// unprefixed key.
func (h Helper) TranslateWithPrefix(prefix string, target string, tokens map[string]string, def string) string {
	if def == "" {
		_, def = SplitDomain(target)
	}
	domain, str := SplitDomain(target)
	return h.Translate(JoinDomain(domain, prefix+str), tokens, def)
}

func (h Helper) lookup(domain string, str string) (string, bool) {
	if h.translator == nil {
		return "", false
	}
	key := JoinDomain(domain, SanitizeKey(str))
	msg := h.translator.Translate(key)
	if msg == key {
		return "", false
	}
	return msg, true
}

func substitute(msg string, tokens map[string]string) string {
	if len(tokens) == 0 {
		return msg
	}
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	// longest first so %%count%% is not shadowed by a shorter token
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, tokenPlaceholder(name), tokens[name])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

func tokenPlaceholder(name string) string {
	if strings.HasPrefix(name, tokenDelimiter) && strings.HasSuffix(name, tokenDelimiter) && len(name) > 2*len(tokenDelimiter) {
		return name
	}
	return tokenDelimiter + name + tokenDelimiter
}

func debugTranslation(domain string, str string, tokens map[string]string) string {
	target := JoinDomain(domain, str)
	if len(tokens) == 0 {
		return "*" + target + "*"
	}
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" = "+tokens[name])
	}
	return "*" + target + " | [" + strings.Join(parts, ", ") + "]*"
}
