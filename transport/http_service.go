package transport

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-ils/core"
	"github.com/hashicorp/go-retryablehttp"
)

// StdHTTPService hands out net/http clients sharing one transport.
type StdHTTPService struct {
	Transport http.RoundTripper
}

func NewStdHTTPService(transport http.RoundTripper) *StdHTTPService {
	return &StdHTTPService{Transport: transport}
}

func (s *StdHTTPService) CreateClient(_ string, _ string, timeout time.Duration) (core.HTTPDoer, error) {
	client := &http.Client{Timeout: timeout}
	if s != nil && s.Transport != nil {
		client.Transport = s.Transport
	}
	return client, nil
}

type RetryConfig struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Transport    http.RoundTripper
}

// RetryableHTTPService backs clients with go-retryablehttp. RetryMax defaults
// to zero so retries only happen when an operator opts in at this level. The
// last response is passed through so status handling stays with the executor.
type RetryableHTTPService struct {
	config RetryConfig
}

func NewRetryableHTTPService(cfg RetryConfig) *RetryableHTTPService {
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = time.Second
	}
	if cfg.RetryWaitMax < cfg.RetryWaitMin {
		cfg.RetryWaitMax = 30 * time.Second
	}
	return &RetryableHTTPService{config: cfg}
}

func (s *RetryableHTTPService) CreateClient(_ string, _ string, timeout time.Duration) (core.HTTPDoer, error) {
	cfg := RetryConfig{}
	if s != nil {
		cfg = s.config
	}
	rcClient := retryablehttp.NewClient()
	rcClient.RetryMax = cfg.RetryMax
	rcClient.RetryWaitMin = cfg.RetryWaitMin
	rcClient.RetryWaitMax = cfg.RetryWaitMax
	rcClient.Logger = nil
	rcClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.Transport != nil {
		rcClient.HTTPClient.Transport = cfg.Transport
	}
	httpClient := rcClient.StandardClient()
	httpClient.Timeout = timeout
	return httpClient, nil
}

func sortedHeaderKeys(headers http.Header) []string {
	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

var redactedHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"x-api-key":           {},
}

func redactHeaderValue(key string, value string) string {
	if _, ok := redactedHeaders[strings.ToLower(strings.TrimSpace(key))]; ok && value != "" {
		return "[REDACTED]"
	}
	return value
}

var (
	_ core.HTTPService = (*StdHTTPService)(nil)
	_ core.HTTPService = (*RetryableHTTPService)(nil)
)
