package google

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	analyticsapi "google.golang.org/api/analytics/v3"

	"analyticsadmin/internal/cache"
	"analyticsadmin/internal/errs"
)

const (
	AnalyticsReadOnlyScope = analyticsapi.AnalyticsReadonlyScope

	// Tokens are renewed this long before they expire
	TokenRefreshBuffer = 5 * time.Minute

	tokenCacheReport = "google-access-token"

	// lifetime assumed for tokens issued without an expiry
	defaultTokenLifetime = time.Hour
)

// TokenSource builds the service account token source for options
func TokenSource(ctx context.Context, options *Options) (oauth2.TokenSource, error) {
	key, err := options.PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load service account key: %w", err)
	}

	if isJSONKey(key) {
		config, err := googleoauth.JWTConfigFromJSON(key, AnalyticsReadOnlyScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		return config.TokenSource(ctx), nil
	}

	config := &jwt.Config{
		Email:      options.ServiceAccountEmail,
		PrivateKey: key,
		Scopes:     []string{AnalyticsReadOnlyScope},
		TokenURL:   googleoauth.JWTTokenURL,
	}
	return config.TokenSource(ctx), nil
}

// cachedTokenSource reuses a token in process until shortly before it expires
// and records every fetched token in store.
type cachedTokenSource struct {
	base  oauth2.TokenSource
	store cache.Store
	key   string
	ctx   context.Context

	tokenMutex  sync.RWMutex
	cachedToken *oauth2.Token
	cacheExpiry time.Time
}

func newCachedTokenSource(ctx context.Context, base oauth2.TokenSource, store cache.Store, key string) *cachedTokenSource {
	return &cachedTokenSource{base: base, store: store, key: key, ctx: ctx}
}

func (c *cachedTokenSource) Token() (*oauth2.Token, error) {
	c.tokenMutex.RLock()
	if c.cachedToken != nil && time.Now().Before(c.cacheExpiry) {
		token := c.cachedToken
		c.tokenMutex.RUnlock()
		return token, nil
	}
	c.tokenMutex.RUnlock()

	return c.refreshToken()
}

func (c *cachedTokenSource) refreshToken() (*oauth2.Token, error) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()

	if c.cachedToken != nil && time.Now().Before(c.cacheExpiry) {
		return c.cachedToken, nil
	}

	if c.store != nil {
		data, ok, err := c.store.Get(c.ctx, c.key)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read token cache: %v", errs.ErrCacheUnavailable, err)
		}
		if ok {
			var token oauth2.Token
			if err := json.Unmarshal(data, &token); err == nil && token.Valid() {
				c.remember(&token)
				return &token, nil
			}
		}
	}

	token, err := c.base.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch access token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("received empty access token")
	}
	if !token.Valid() {
		return nil, fmt.Errorf("received invalid token")
	}

	c.remember(token)

	// stores treat a non-positive ttl as "never expires"
	ttl := tokenLifetime(token)
	if c.store != nil && ttl > 0 {
		data, err := json.Marshal(token)
		if err != nil {
			return nil, fmt.Errorf("failed to encode access token: %w", err)
		}
		if err := c.store.Set(c.ctx, c.key, data, ttl); err != nil {
			return nil, fmt.Errorf("%w: failed to write token cache: %v", errs.ErrCacheUnavailable, err)
		}
	}
	return token, nil
}

// remember keeps token until TokenRefreshBuffer before it expires. A token
// issued with less life than the buffer is kept until its own expiry.
func (c *cachedTokenSource) remember(token *oauth2.Token) {
	now := time.Now()
	expiry := now.Add(defaultTokenLifetime)
	if !token.Expiry.IsZero() {
		expiry = token.Expiry.Add(-TokenRefreshBuffer)
		if !expiry.After(now) {
			expiry = token.Expiry
		}
	}
	c.cachedToken = token
	c.cacheExpiry = expiry
}

// tokenLifetime is how long token may stay in the token cache
func tokenLifetime(token *oauth2.Token) time.Duration {
	if token.Expiry.IsZero() {
		return defaultTokenLifetime
	}
	return time.Until(token.Expiry)
}

// tokenCacheKey identifies the credentials without exposing the key material
func tokenCacheKey(options *Options, key []byte) string {
	hash := sha256.Sum256(append([]byte(options.ServiceAccountEmail+"\x00"), key...))
	return cache.Key(tokenCacheReport, hex.EncodeToString(hash[:8]))
}

// HTTPClient returns an http client authorized as the configured service account.
// Tokens are written through tokens, which is expected to be a cache.WriteOnly store.
func HTTPClient(ctx context.Context, options *Options, tokens cache.Store) (*http.Client, error) {
	base, err := TokenSource(ctx, options)
	if err != nil {
		return nil, err
	}
	key, err := options.PrivateKey()
	if err != nil {
		return nil, err
	}
	source := newCachedTokenSource(ctx, base, tokens, tokenCacheKey(options, key))
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, source)), nil
}
