package translation

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDomain   = "default"
	domainSeparator = "::"
)

// SplitDomain separates "Domain::key" into its text domain and key. Keys
// without a domain, or with an empty one, belong to the default domain.
func SplitDomain(target string) (string, string) {
	domain, key, ok := strings.Cut(target, domainSeparator)
	if !ok {
		return DefaultDomain, target
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		domain = DefaultDomain
	}
	return domain, key
}

// JoinDomain is the inverse of SplitDomain; the default domain is omitted.
func JoinDomain(domain string, key string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" || domain == DefaultDomain {
		return key
	}
	return domain + domainSeparator + key
}

// Catalog is an in-memory message table grouped by text domain. Lookups that
// miss return the requested key unchanged.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{messages: map[string]map[string]string{}}
}

func (c *Catalog) Add(domain string, key string, message string) {
	if c == nil {
		return
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		domain = DefaultDomain
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.messages == nil {
		c.messages = map[string]map[string]string{}
	}
	if c.messages[domain] == nil {
		c.messages[domain] = map[string]string{}
	}
	c.messages[domain][key] = message
}

// Merge copies every message of other into c, overwriting duplicates.
func (c *Catalog) Merge(other *Catalog) {
	if c == nil || other == nil {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	for domain, messages := range other.messages {
		for key, message := range messages {
			c.Add(domain, key, message)
		}
	}
}

func (c *Catalog) Lookup(domain string, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if strings.TrimSpace(domain) == "" {
		domain = DefaultDomain
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	message, ok := c.messages[domain][key]
	return message, ok
}

// Translate implements core.Translator.
func (c *Catalog) Translate(key string) string {
	domain, str := SplitDomain(key)
	if message, ok := c.Lookup(domain, str); ok {
		return message
	}
	return key
}

func (c *Catalog) Domains() []string {
	if c == nil {
		return []string{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for domain := range c.messages {
		out = append(out, domain)
	}
	sort.Strings(out)
	return out
}

// LoadCatalogYAML reads a document whose top-level keys are text domains
// mapping message keys to strings.
func LoadCatalogYAML(r io.Reader) (*Catalog, error) {
	catalog := NewCatalog()
	if r == nil {
		return catalog, nil
	}
	raw := map[string]map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return catalog, nil
		}
		return nil, fmt.Errorf("translation: decode catalog yaml: %w", err)
	}
	for domain, messages := range raw {
		for key, message := range messages {
			catalog.Add(domain, key, message)
		}
	}
	return catalog, nil
}

func LoadCatalogFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("translation: catalog path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("translation: read catalog %s: %w", path, err)
	}
	return LoadCatalogYAML(bytes.NewReader(data))
}
