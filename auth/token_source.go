package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-ils/cache"
	"github.com/goliatone/go-ils/core"
	"github.com/golang-jwt/jwt/v5"
)

const tokenCacheKey = "oauth"

// TokenFetcher is satisfied by Negotiator.
type TokenFetcher interface {
	FetchToken(ctx context.Context, req TokenRequest) (core.AuthToken, error)
}

type TokenSourceConfig struct {
	Fetcher TokenFetcher
	Request TokenRequest
	Cache   *cache.TTLCache
	// RenewBefore shortens the cached lifetime so a token is renewed before
	// the server rejects it.
	RenewBefore time.Duration
	Now         func() time.Time
}

// TokenSource hands out Authorization header values, caching them until the
// token expires.
type TokenSource struct {
	fetcher     TokenFetcher
	request     TokenRequest
	cache       *cache.TTLCache
	renewBefore time.Duration
	now         func() time.Time
}

func NewTokenSource(cfg TokenSourceConfig) *TokenSource {
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	renewBefore := cfg.RenewBefore
	if renewBefore < 0 {
		renewBefore = 0
	}
	return &TokenSource{
		fetcher:     cfg.Fetcher,
		request:     cfg.Request,
		cache:       cfg.Cache,
		renewBefore: renewBefore,
		now:         now,
	}
}

// Token returns a cached header value unless renew is set or the cache has
// nothing usable.
func (s *TokenSource) Token(ctx context.Context, renew bool) (string, error) {
	if s == nil || s.fetcher == nil {
		return "", core.NewInternalError("auth: token source is not configured")
	}
	if !renew {
		if cached, ok := cache.Load[string](ctx, s.cache, tokenCacheKey); ok && strings.TrimSpace(cached) != "" {
			return cached, nil
		}
	}

	token, err := s.fetcher.FetchToken(ctx, s.request)
	if err != nil {
		return "", err
	}
	header := token.HeaderValue()
	if lifetime := s.lifetime(token); lifetime > 0 {
		s.cache.PutWithLifetime(ctx, tokenCacheKey, header, lifetime)
	} else {
		s.cache.Put(ctx, tokenCacheKey, header)
	}
	return header, nil
}

// Invalidate drops the cached token.
func (s *TokenSource) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.cache.Remove(ctx, tokenCacheKey)
}

func (s *TokenSource) lifetime(token core.AuthToken) time.Duration {
	lifetime := token.Lifetime()
	if lifetime <= 0 {
		if expiresAt, ok := ExpiryFromJWT(token.AccessToken); ok {
			lifetime = expiresAt.Sub(s.now())
		}
	}
	if lifetime <= 0 {
		return 0
	}
	if s.renewBefore > 0 && lifetime > s.renewBefore {
		lifetime -= s.renewBefore
	}
	return lifetime
}

// ExpiryFromJWT reads the exp claim of a JWT access token without verifying
// its signature. Opaque tokens report false.
func ExpiryFromJWT(accessToken string) (time.Time, bool) {
	accessToken = strings.TrimSpace(accessToken)
	if strings.Count(accessToken, ".") != 2 {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil || parsed == nil || parsed.Claims == nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time.UTC(), true
}

// NewTokenRequest maps the API section settings onto a token request.
func NewTokenRequest(cfg core.APIConfig) TokenRequest {
	return TokenRequest{
		Endpoint:     cfg.TokenEndpoint,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		GrantType:    firstNonEmpty(cfg.GrantType, core.DefaultGrantType),
		UseHTTPBasic: cfg.TokenBasicAuth,
	}
}

var _ TokenFetcher = (*Negotiator)(nil)
