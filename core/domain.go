package core

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

type ParamField struct {
	Key   string
	Value string
}

// Params is either an ordered list of key/value pairs or an opaque raw body.
type Params struct {
	fields []ParamField
	raw    string
	isRaw  bool
}

func NewParams(pairs ...string) Params {
	params := Params{}
	for i := 0; i+1 < len(pairs); i += 2 {
		params = params.Add(pairs[i], pairs[i+1])
	}
	return params
}

func RawBody(body string) Params {
	return Params{raw: body, isRaw: true}
}

// Add returns a copy of p with the pair appended. Adding to a raw body is a no-op.
func (p Params) Add(key string, value string) Params {
	if p.isRaw {
		return p
	}
	fields := make([]ParamField, 0, len(p.fields)+1)
	fields = append(fields, p.fields...)
	fields = append(fields, ParamField{Key: key, Value: value})
	return Params{fields: fields}
}

func (p Params) IsRaw() bool {
	return p.isRaw
}

func (p Params) Raw() string {
	return p.raw
}

func (p Params) Fields() []ParamField {
	return append([]ParamField(nil), p.fields...)
}

func (p Params) Empty() bool {
	if p.isRaw {
		return p.raw == ""
	}
	return len(p.fields) == 0
}

// Encode form-encodes the pairs keeping insertion order.
func (p Params) Encode() string {
	if p.isRaw {
		return p.raw
	}
	parts := make([]string, 0, len(p.fields))
	for _, field := range p.fields {
		parts = append(parts, url.QueryEscape(field.Key)+"="+url.QueryEscape(field.Value))
	}
	return strings.Join(parts, "&")
}

// String renders the params for diagnostics only.
func (p Params) String() string {
	if p.isRaw {
		return fmt.Sprintf("%q", p.raw)
	}
	parts := make([]string, 0, len(p.fields))
	for _, field := range p.fields {
		parts = append(parts, fmt.Sprintf("%q => %q", field.Key, field.Value))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AllowedFailures decides whether a non-2xx status is returned to the caller
// instead of failing the request.
type AllowedFailures interface {
	Allows(statusCode int) bool
}

type ExactCodes map[int]struct{}

func Codes(codes ...int) ExactCodes {
	set := make(ExactCodes, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

func (c ExactCodes) Allows(statusCode int) bool {
	_, ok := c[statusCode]
	return ok
}

func (c ExactCodes) String() string {
	codes := make([]int, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return fmt.Sprint(codes)
}

// CodePattern matches the decimal rendering of the status code.
type CodePattern struct {
	re *regexp.Regexp
}

func Pattern(expr string) (*CodePattern, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("core: allowed failure pattern is required")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("core: invalid allowed failure pattern %q: %w", expr, err)
	}
	return &CodePattern{re: re}, nil
}

func MustPattern(expr string) *CodePattern {
	pattern, err := Pattern(expr)
	if err != nil {
		panic(err)
	}
	return pattern
}

func (p *CodePattern) Allows(statusCode int) bool {
	if p == nil || p.re == nil {
		return false
	}
	return p.re.MatchString(strconv.Itoa(statusCode))
}

func (p *CodePattern) String() string {
	if p == nil || p.re == nil {
		return ""
	}
	return p.re.String()
}

func IsSuccessStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}

// Response is returned for both 2xx results and allowed failures; callers
// branch on StatusCode.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (r Response) Success() bool {
	return IsSuccessStatus(r.StatusCode)
}

func (r Response) AllowedFailure() bool {
	return r.StatusCode != 0 && !r.Success()
}

type AuthToken struct {
	AccessToken string
	ExpiresIn   *int
	TokenType   string
}

func NewAuthToken(accessToken string, expiresIn *int, tokenType string) AuthToken {
	return AuthToken{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		TokenType:   tokenType,
	}
}

// HeaderValue is the Authorization header value, e.g. "Bearer abc".
func (t AuthToken) HeaderValue() string {
	return strings.TrimSpace(t.TokenType + " " + t.AccessToken)
}

// Lifetime returns zero when the token did not declare an expiry.
func (t AuthToken) Lifetime() time.Duration {
	if t.ExpiresIn == nil || *t.ExpiresIn <= 0 {
		return 0
	}
	return time.Duration(*t.ExpiresIn) * time.Second
}
