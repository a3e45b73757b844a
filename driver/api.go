package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-ils/auth"
	"github.com/goliatone/go-ils/core"
	"github.com/goliatone/go-ils/transport"
)

type APIOption func(*API)

// WithPreRequest installs the hook that may rewrite headers and params before
// every request. It is the only pre-request extension point; drivers that
// embed *API pass their hook here from their constructor.
func WithPreRequest(fn transport.PreRequestFunc) APIOption {
	return func(a *API) {
		a.preRequest = fn
	}
}

func WithConfigValidator(fn ConfigValidator) APIOption {
	return func(a *API) {
		a.Base.validate = fn
	}
}

// WithTokenScopes adds OAuth2 scopes to every token request.
func WithTokenScopes(scopes ...string) APIOption {
	return func(a *API) {
		a.scopes = append(a.scopes, scopes...)
	}
}

// WithTokenRenewBefore shortens cached token lifetimes by d.
func WithTokenRenewBefore(d time.Duration) APIOption {
	return func(a *API) {
		a.renewBefore = d
	}
}

// API is the base for drivers that talk to a REST endpoint. SetConfig
// requires API/base_url and prepares the request executor; token endpoint
// settings enable OAuth2 client credentials.
type API struct {
	*Base

	mu          sync.RWMutex
	apiConfig   core.APIConfig
	configured  bool
	executor    *transport.Executor
	tokens      *auth.TokenSource
	preRequest  transport.PreRequestFunc
	scopes      []string
	renewBefore time.Duration
}

func NewAPI(name string, opts ...APIOption) *API {
	api := &API{Base: NewBase(name, nil)}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

func (a *API) SetConfig(cfg core.Config) error {
	if a == nil || a.Base == nil {
		return core.NewInternalError("driver: api driver is nil")
	}
	apiConfig, err := core.BuildAPIConfig(cfg)
	if err != nil {
		a.Logger().Error("ils driver configuration rejected", "error", err.Error())
		return err
	}
	if err := a.Base.SetConfig(cfg); err != nil {
		return err
	}
	a.Base.SetCacheScope(cacheScope(apiConfig))
	a.SetCacheLifetime(apiConfig.CacheTTL())

	a.mu.Lock()
	defer a.mu.Unlock()
	a.apiConfig = apiConfig
	a.configured = true
	return a.rebuildLocked()
}

func (a *API) APIConfig() core.APIConfig {
	if a == nil {
		return core.APIConfig{}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.apiConfig
}

func (a *API) SetHTTPService(service core.HTTPService) {
	if a == nil || a.Base == nil {
		return
	}
	a.Base.SetHTTPService(service)
	a.refresh()
}

func (a *API) SetLogger(logger core.Logger) {
	if a == nil || a.Base == nil {
		return
	}
	a.Base.SetLogger(logger)
	a.refresh()
}

func (a *API) SetLoggerProvider(provider core.LoggerProvider) {
	if a == nil || a.Base == nil {
		return
	}
	a.Base.SetLoggerProvider(provider)
	a.refresh()
}

func (a *API) SetCacheBackend(backend core.CacheBackend) {
	if a == nil || a.Base == nil {
		return
	}
	a.Base.SetCacheBackend(backend)
	a.refresh()
}

func (a *API) SetClock(now func() time.Time) {
	if a == nil || a.Base == nil {
		return
	}
	a.Base.SetClock(now)
	a.refresh()
}

// MakeRequest sends one request through the executor. Allowed failures come
// back as a response; callers branch on StatusCode.
func (a *API) MakeRequest(
	ctx context.Context,
	method string,
	path string,
	params core.Params,
	headers http.Header,
	allowed core.AllowedFailures,
) (core.Response, error) {
	executor := a.currentExecutor()
	if executor == nil {
		return core.Response{}, core.NewConfigError("ils: API driver is not configured")
	}
	return executor.Execute(ctx, method, path, params, headers, allowed)
}

// TokenSource is nil unless API/token_endpoint is configured.
func (a *API) TokenSource() *auth.TokenSource {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tokens
}

// CallWithToken attaches the OAuth2 Authorization header. A 401 or 403
// answer renews the token and retries the request once.
func (a *API) CallWithToken(
	ctx context.Context,
	method string,
	path string,
	params core.Params,
	headers http.Header,
	allowed core.AllowedFailures,
) (core.Response, error) {
	tokens := a.TokenSource()
	if tokens == nil {
		return core.Response{}, core.NewConfigError("ils: OAuth2 token endpoint is not configured")
	}
	reqHeaders := http.Header{}
	if headers != nil {
		reqHeaders = headers.Clone()
	}
	if reqHeaders.Get("Accept") == "" {
		reqHeaders.Set("Accept", "application/json")
	}

	token, err := tokens.Token(ctx, false)
	if err != nil {
		return core.Response{}, err
	}
	reqHeaders.Set("Authorization", token)
	response, err := a.MakeRequest(ctx, method, path, params, reqHeaders, authRetryFailures{allowed: allowed})
	if err != nil {
		return core.Response{}, err
	}
	if !isAuthRejection(response.StatusCode) {
		return response, nil
	}

	a.Logger().Debug("ils token rejected, renewing", "status_code", response.StatusCode, "path", path)
	token, err = tokens.Token(ctx, true)
	if err != nil {
		return core.Response{}, err
	}
	reqHeaders.Set("Authorization", token)
	return a.MakeRequest(ctx, method, path, params, reqHeaders, allowed)
}

func (a *API) currentExecutor() *transport.Executor {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.executor
}

func (a *API) refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.configured {
		return
	}
	if err := a.rebuildLocked(); err != nil {
		a.Logger().Error("ils driver rebuild failed", "error", err.Error())
	}
}

func (a *API) rebuildLocked() error {
	service := a.HTTPService()
	logger := a.Logger()
	executor, err := transport.NewExecutor(transport.ExecutorConfig{
		BaseURL:     a.apiConfig.BaseURL,
		HTTPService: service,
		Logger:      logger,
		PreRequest:  a.preRequest,
	})
	if err != nil {
		return err
	}
	a.executor = executor
	a.tokens = nil
	if !a.apiConfig.OAuth2Enabled() {
		return nil
	}
	request := auth.NewTokenRequest(a.apiConfig)
	request.Scopes = append([]string(nil), a.scopes...)
	a.tokens = auth.NewTokenSource(auth.TokenSourceConfig{
		Fetcher:     auth.NewNegotiator(auth.NegotiatorConfig{HTTPService: service, Logger: logger}),
		Request:     request,
		Cache:       a.Cache(),
		RenewBefore: a.renewBefore,
		Now:         a.Base.clock(),
	})
	return nil
}

// cacheScope is API/cache_key when set, otherwise a digest of the endpoints
// and client id, so instances pointed at different ILS hosts never share
// cache entries.
func cacheScope(cfg core.APIConfig) string {
	if cfg.CacheKey != "" {
		return cfg.CacheKey
	}
	sum := sha256.Sum256([]byte(cfg.BaseURL + "|" + cfg.TokenEndpoint + "|" + cfg.ClientID))
	return hex.EncodeToString(sum[:6])
}

func isAuthRejection(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

// authRetryFailures lets 401 and 403 through so the caller can renew.
type authRetryFailures struct {
	allowed core.AllowedFailures
}

func (f authRetryFailures) Allows(statusCode int) bool {
	if isAuthRejection(statusCode) {
		return true
	}
	return f.allowed != nil && f.allowed.Allows(statusCode)
}
