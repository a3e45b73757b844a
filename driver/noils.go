package driver

import (
	"strings"
)

const (
	NoILSName = "noils"

	noILSDefaultMode = "ils-offline"
)

// NoILS stands in when no library system is reachable. It accepts any
// configuration and answers from its settings without network calls.
type NoILS struct {
	*Base
}

func NewNoILS() *NoILS {
	return &NoILS{Base: NewBase(NoILSName, nil)}
}

// FunctionConfig returns the configuration section named after a driver
// function, e.g. "Holds".
func (d *NoILS) FunctionConfig(function string) (map[string]any, bool) {
	cfg := d.Config()
	section, ok := cfg[strings.TrimSpace(function)]
	if !ok {
		return nil, false
	}
	return section, true
}

// OfflineMode is settings/mode, "ils-offline" by default.
func (d *NoILS) OfflineMode() string {
	if mode := d.Config().String("settings", "mode"); mode != "" {
		return mode
	}
	return noILSDefaultMode
}

func (d *NoILS) LoginHidden() bool {
	value, ok := d.Config().Value("settings", "hideLogin")
	if !ok {
		return false
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "yes", "on":
			return true
		}
	case int:
		return typed != 0
	}
	return false
}

// CustomStatus renders the Status section with translated labels when
// settings/useStatus is "custom".
func (d *NoILS) CustomStatus() (map[string]string, bool) {
	cfg := d.Config()
	if cfg.String("settings", "useStatus") != "custom" {
		return nil, false
	}
	status := map[string]string{}
	for key, value := range cfg.Section("Status") {
		text := cfg.String("Status", key)
		if _, isString := value.(string); isString && translatedStatusField(key) {
			text = d.Translate(text, nil, text)
		}
		status[key] = text
	}
	return status, true
}

func translatedStatusField(key string) bool {
	switch key {
	case "status", "location", "callnumber":
		return true
	}
	return false
}

// NoILSRegistration registers the offline driver.
func NoILSRegistration() Registration {
	return Define(NoILSName, NewNoILS, CapabilityLogger)
}

// RegisterBuiltins adds the drivers shipped with this module.
func RegisterBuiltins(registry *Registry) error {
	return registry.Register(NoILSRegistration())
}

func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = RegisterBuiltins(registry)
	return registry
}
