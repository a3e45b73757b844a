package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-ils/core"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	defaultTokenRequestTimeout    = 30 * time.Second
	maxTokenResponseBodyBytes     = 1 << 20
	tokenRequestContentType       = "application/x-www-form-urlencoded"
	tokenRequestAcceptContentType = "application/json"
)

type NegotiatorConfig struct {
	HTTPService core.HTTPService
	Logger      core.Logger
	Timeout     time.Duration
}

type TokenRequest struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	GrantType    string
	UseHTTPBasic bool
	Scopes       []string
}

// Negotiator performs OAuth2 token exchanges against a token endpoint.
type Negotiator struct {
	httpService core.HTTPService
	logger      core.Logger
	timeout     time.Duration
}

func NewNegotiator(cfg NegotiatorConfig) *Negotiator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTokenRequestTimeout
	}
	service := cfg.HTTPService
	if service == nil {
		service = defaultHTTPService{}
	}
	return &Negotiator{
		httpService: service,
		logger:      glog.Ensure(cfg.Logger),
		timeout:     timeout,
	}
}

// FetchToken exchanges client credentials for an access token. Failures are
// logged with full detail and surfaced as auth token errors with a generic
// message.
func (n *Negotiator) FetchToken(ctx context.Context, req TokenRequest) (core.AuthToken, error) {
	if n == nil || n.httpService == nil {
		return core.AuthToken{}, core.NewInternalError("auth: token negotiator is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimSpace(req.Endpoint)
	grantType := strings.TrimSpace(req.GrantType)
	if grantType == "" {
		grantType = core.DefaultGrantType
	}

	values := url.Values{}
	values.Set("grant_type", grantType)
	if !req.UseHTTPBasic {
		values.Set("client_id", req.ClientID)
		values.Set("client_secret", req.ClientSecret)
	}
	if scopes := normalizeValues(req.Scopes); len(scopes) > 0 {
		values.Set("scope", strings.Join(scopes, " "))
	}

	requestCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	client, err := n.httpService.CreateClient(endpoint, http.MethodPost, n.timeout)
	if err != nil {
		return core.AuthToken{}, n.requestFailed(endpoint, err)
	}
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return core.AuthToken{}, n.requestFailed(endpoint, err)
	}
	httpReq.Header.Set("Content-Type", tokenRequestContentType)
	httpReq.Header.Set("Accept", tokenRequestAcceptContentType)
	if req.UseHTTPBasic {
		httpReq.SetBasicAuth(req.ClientID, req.ClientSecret)
	}

	response, err := client.Do(httpReq)
	if err != nil {
		return core.AuthToken{}, n.requestFailed(endpoint, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxTokenResponseBodyBytes+1))
	if err == nil && int64(len(body)) > maxTokenResponseBodyBytes {
		err = fmt.Errorf("token response exceeds %d bytes", maxTokenResponseBodyBytes)
	}
	if err != nil {
		return core.AuthToken{}, n.requestFailed(endpoint, err)
	}

	if response.StatusCode != http.StatusOK {
		n.logger.Error("ils auth token bad status code",
			"endpoint", endpoint,
			"status_code", response.StatusCode,
			"body", string(body),
		)
		return core.AuthToken{}, core.NewAuthTokenError(core.MessageTokenStatus, map[string]any{
			"endpoint":    endpoint,
			"status_code": response.StatusCode,
		})
	}

	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		payload = map[string]any{}
	}
	tokenType := readAnyString(payload["token_type"])
	accessToken := readAnyString(payload["access_token"])
	if tokenType == "" || accessToken == "" {
		n.logger.Error("ils auth token empty data",
			"endpoint", endpoint,
			"body", string(body),
		)
		return core.AuthToken{}, core.NewAuthTokenError(core.MessageTokenEmptyData, map[string]any{
			"endpoint": endpoint,
		})
	}

	return core.NewAuthToken(accessToken, readExpiresIn(payload["expires_in"]), tokenType), nil
}

func (n *Negotiator) requestFailed(endpoint string, err error) error {
	n.logger.Error("ils auth token request failed",
		"endpoint", endpoint,
		"error", err.Error(),
	)
	return core.NewAuthTokenError(core.MessageTokenRequest, map[string]any{"endpoint": endpoint})
}

func readAnyString(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return ""
	}
}

func readExpiresIn(value any) *int {
	var seconds int
	switch typed := value.(type) {
	case float64:
		seconds = int(typed)
	case int:
		seconds = typed
	case int64:
		seconds = int(typed)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return nil
		}
		seconds = parsed
	default:
		return nil
	}
	return &seconds
}

type defaultHTTPService struct{}

func (defaultHTTPService) CreateClient(_ string, _ string, timeout time.Duration) (core.HTTPDoer, error) {
	return &http.Client{Timeout: timeout}, nil
}

var _ core.HTTPService = defaultHTTPService{}
