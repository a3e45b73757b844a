package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-ils/core"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

// RequestTimeout is the fixed ceiling for every executor call.
const RequestTimeout = 120 * time.Second

const (
	defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB
	LoggedBodyLimit                = 2048
)

// PreRequestFunc may rewrite headers and params before a request is sent.
type PreRequestFunc func(headers http.Header, params core.Params) (http.Header, core.Params)

type ExecutorConfig struct {
	BaseURL              string
	HTTPService          core.HTTPService
	Logger               core.Logger
	PreRequest           PreRequestFunc
	MaxResponseBodyBytes int64
}

type Executor struct {
	baseURL     string
	httpService core.HTTPService
	logger      core.Logger
	preRequest  PreRequestFunc
	bodyLimit   int64
}

func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, core.NewConfigError("transport: base url is required")
	}
	service := cfg.HTTPService
	if service == nil {
		service = NewStdHTTPService(nil)
	}
	bodyLimit := cfg.MaxResponseBodyBytes
	if bodyLimit <= 0 {
		bodyLimit = defaultResponseBodyLimit
	}
	return &Executor{
		baseURL:     baseURL,
		httpService: service,
		logger:      glog.Ensure(cfg.Logger),
		preRequest:  cfg.PreRequest,
		bodyLimit:   bodyLimit,
	}, nil
}

func (e *Executor) BaseURL() string {
	if e == nil {
		return ""
	}
	return e.baseURL
}

// Execute sends one request against the configured base URL. Both 2xx
// responses and allowed failures are returned; any other status, and any
// transport fault, fails with a request error whose detail is only logged.
func (e *Executor) Execute(
	ctx context.Context,
	method string,
	path string,
	params core.Params,
	headers http.Header,
	allowed core.AllowedFailures,
) (core.Response, error) {
	if e == nil || e.httpService == nil {
		return core.Response{}, core.NewInternalError("transport: executor is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method = strings.TrimSpace(strings.ToUpper(method))
	if method == "" {
		method = http.MethodGet
	}
	if path == "" {
		path = "/"
	}
	target := e.baseURL + path

	reqHeaders := cloneHeader(headers)
	if e.preRequest != nil {
		reqHeaders, params = e.preRequest(reqHeaders, params)
		if reqHeaders == nil {
			reqHeaders = http.Header{}
		}
	}

	requestID := uuid.NewString()
	paramsText, headersText := "", ""
	if method == http.MethodGet {
		paramsText = params.String()
		headersText = headerString(reqHeaders)
	}
	e.logger.Debug("ils request",
		"request_id", requestID,
		"method", method,
		"url", target,
		"params", paramsText,
		"headers", headersText,
	)

	var body io.Reader
	if method == http.MethodGet {
		target = appendQuery(target, params)
	} else if !params.Empty() {
		body = strings.NewReader(params.Encode())
		if !params.IsRaw() && reqHeaders.Get("Content-Type") == "" {
			reqHeaders.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}

	client, err := e.httpService.CreateClient(target, method, RequestTimeout)
	if err != nil {
		e.logSendFailure(requestID, method, target, err)
		return core.Response{}, core.NewRequestError(core.MessageSendFailure, requestMetadata(method, path, 0))
	}

	requestCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, method, target, body)
	if err != nil {
		e.logSendFailure(requestID, method, target, err)
		return core.Response{}, core.NewRequestError(core.MessageSendFailure, requestMetadata(method, path, 0))
	}
	httpReq.Header = reqHeaders

	httpRes, err := client.Do(httpReq)
	if err != nil {
		e.logSendFailure(requestID, method, target, err)
		return core.Response{}, core.NewRequestError(core.MessageSendFailure, requestMetadata(method, path, 0))
	}
	defer httpRes.Body.Close()

	resBody, err := io.ReadAll(io.LimitReader(httpRes.Body, e.bodyLimit+1))
	if err == nil && int64(len(resBody)) > e.bodyLimit {
		err = fmt.Errorf("response body exceeds limit of %d bytes", e.bodyLimit)
	}
	if err != nil {
		e.logSendFailure(requestID, method, target, err)
		return core.Response{}, core.NewRequestError(core.MessageSendFailure, requestMetadata(method, path, httpRes.StatusCode))
	}

	response := core.Response{
		StatusCode: httpRes.StatusCode,
		Body:       resBody,
		Headers:    httpRes.Header.Clone(),
	}
	if response.Success() {
		return response, nil
	}
	if allowed != nil && allowed.Allows(response.StatusCode) {
		return response, nil
	}

	e.logger.Error("ils request unexpected status",
		"request_id", requestID,
		"method", method,
		"url", target,
		"status_code", response.StatusCode,
		"body", truncateBody(resBody),
	)
	return core.Response{}, core.NewRequestError(core.MessageUnexpectedStatus, requestMetadata(method, path, response.StatusCode))
}

func (e *Executor) logSendFailure(requestID string, method string, target string, err error) {
	e.logger.Error("ils request send failure",
		"request_id", requestID,
		"method", method,
		"url", target,
		"error_type", fmt.Sprintf("%T", err),
		"error", err.Error(),
	)
}

func requestMetadata(method string, path string, statusCode int) map[string]any {
	metadata := map[string]any{
		"method": method,
		"path":   path,
	}
	if statusCode > 0 {
		metadata["status_code"] = statusCode
	}
	return metadata
}

func appendQuery(target string, params core.Params) string {
	if params.Empty() {
		return target
	}
	encoded := params.Encode()
	if params.IsRaw() {
		encoded = strings.TrimPrefix(encoded, "?")
	}
	if strings.Contains(target, "?") {
		return target + "&" + encoded
	}
	return target + "?" + encoded
}

func cloneHeader(headers http.Header) http.Header {
	if len(headers) == 0 {
		return http.Header{}
	}
	return headers.Clone()
}

func headerString(headers http.Header) string {
	if len(headers) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	buf.WriteString("[")
	first := true
	for _, key := range sortedHeaderKeys(headers) {
		for _, value := range headers[key] {
			if !first {
				buf.WriteString(", ")
			}
			first = false
			buf.WriteString(key + ": " + redactHeaderValue(key, value))
		}
	}
	buf.WriteString("]")
	return buf.String()
}

func truncateBody(body []byte) string {
	if len(body) <= LoggedBodyLimit {
		return string(body)
	}
	return string(body[:LoggedBodyLimit]) + "..."
}
