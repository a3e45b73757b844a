package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
)

const (
	SectionAPI = "API"

	DefaultGrantType     = "client_credentials"
	DefaultCacheLifetime = 30 * time.Second
)

// Config is the driver configuration: section -> key -> value.
type Config map[string]map[string]any

func (c Config) Section(name string) map[string]any {
	if c == nil {
		return map[string]any{}
	}
	section, ok := c[name]
	if !ok || section == nil {
		return map[string]any{}
	}
	return section
}

func (c Config) Value(section string, key string) (any, bool) {
	values := c.Section(section)
	value, ok := values[key]
	return value, ok
}

func (c Config) String(section string, key string) string {
	value, ok := c.Value(section, key)
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for name, section := range c {
		copied := make(map[string]any, len(section))
		for key, value := range section {
			copied[key] = value
		}
		out[name] = copied
	}
	return out
}

// Missing lists "Section/key" paths that are absent or empty.
func (c Config) Missing(paths ...string) []string {
	missing := []string{}
	for _, path := range paths {
		section, key, ok := strings.Cut(path, "/")
		if !ok {
			continue
		}
		if c.String(section, key) == "" {
			missing = append(missing, path)
		}
	}
	return missing
}

// RequireKeys fails with a config error naming every missing path.
func (c Config) RequireKeys(driver string, paths ...string) error {
	missing := c.Missing(paths...)
	if len(missing) == 0 {
		return nil
	}
	fields := make([]goerrors.FieldError, 0, len(missing))
	for _, path := range missing {
		fields = append(fields, goerrors.FieldError{Field: path, Message: "is required"})
	}
	return NewConfigError(
		fmt.Sprintf("ils: missing required %s configuration setting(s): %s", driver, strings.Join(missing, ", ")),
		fields...,
	)
}

// APIConfig is the typed view of the API section shared by REST drivers.
type APIConfig struct {
	BaseURL        string `koanf:"base_url" mapstructure:"base_url"`
	TokenEndpoint  string `koanf:"token_endpoint" mapstructure:"token_endpoint"`
	ClientID       string `koanf:"client_id" mapstructure:"client_id"`
	ClientSecret   string `koanf:"client_secret" mapstructure:"client_secret"`
	GrantType      string `koanf:"grant_type" mapstructure:"grant_type"`
	TokenBasicAuth bool   `koanf:"token_basic_auth" mapstructure:"token_basic_auth"`
	CacheLifetime  int    `koanf:"cache_lifetime" mapstructure:"cache_lifetime"`
	CacheKey       string `koanf:"cache_key" mapstructure:"cache_key"`
}

func DefaultAPIConfig() APIConfig {
	return APIConfig{
		GrantType:     DefaultGrantType,
		CacheLifetime: int(DefaultCacheLifetime / time.Second),
	}
}

func (c APIConfig) Validate() error {
	fields := []goerrors.FieldError{}
	if strings.TrimSpace(c.BaseURL) == "" {
		fields = append(fields, goerrors.FieldError{Field: SectionAPI + "/base_url", Message: "is required"})
	}
	if strings.TrimSpace(c.TokenEndpoint) != "" && strings.TrimSpace(c.ClientID) == "" {
		fields = append(fields, goerrors.FieldError{Field: SectionAPI + "/client_id", Message: "is required when token_endpoint is set"})
	}
	if c.CacheLifetime < 0 {
		fields = append(fields, goerrors.FieldError{Field: SectionAPI + "/cache_lifetime", Message: "must not be negative"})
	}
	if len(fields) == 0 {
		return nil
	}
	return NewConfigError("ils: invalid API configuration", fields...)
}

func (c APIConfig) OAuth2Enabled() bool {
	return strings.TrimSpace(c.TokenEndpoint) != ""
}

func (c APIConfig) CacheTTL() time.Duration {
	if c.CacheLifetime <= 0 {
		return DefaultCacheLifetime
	}
	return time.Duration(c.CacheLifetime) * time.Second
}

// BuildAPIConfig decodes and validates the API section. It runs at
// configuration time so a missing base_url never reaches the first request.
func BuildAPIConfig(cfg Config) (APIConfig, error) {
	raw := make(map[string]any, len(cfg.Section(SectionAPI)))
	for key, value := range cfg.Section(SectionAPI) {
		raw[key] = value
	}
	built, err := cfgx.Build[APIConfig](raw, cfgx.WithDefaults(DefaultAPIConfig()))
	if err != nil {
		return APIConfig{}, goerrors.Wrap(err, goerrors.CategoryValidation, "ils: decode API configuration").
			WithTextCode(ErrorConfigInvalid)
	}
	built.BaseURL = strings.TrimSpace(built.BaseURL)
	built.TokenEndpoint = strings.TrimSpace(built.TokenEndpoint)
	built.ClientID = strings.TrimSpace(built.ClientID)
	built.ClientSecret = strings.TrimSpace(built.ClientSecret)
	built.GrantType = strings.TrimSpace(built.GrantType)
	built.CacheKey = strings.TrimSpace(built.CacheKey)
	if built.GrantType == "" {
		built.GrantType = DefaultGrantType
	}
	if err := built.Validate(); err != nil {
		return APIConfig{}, err
	}
	return built, nil
}
