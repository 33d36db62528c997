package security

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// JWKSCache fetches and caches the signing keys published at a JWKS URL
type JWKSCache struct {
	url     string
	client  *http.Client
	ttl     time.Duration
	keys    jwk.Set
	expires time.Time
	mu      sync.RWMutex
}

// NewJWKSCache creates a cache for url that refreshes after ttl
func NewJWKSCache(url string, ttl time.Duration) *JWKSCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWKSCache{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		ttl:    ttl,
	}
}

// PublicKey returns the raw public key for kid. An unknown kid forces one
// refresh so rotated keys are picked up before the cache expires.
func (c *JWKSCache) PublicKey(ctx context.Context, kid string) (any, error) {
	keys, err := c.get(ctx, false)
	if err != nil {
		return nil, err
	}

	key, ok := keys.LookupKeyID(kid)
	if !ok {
		keys, err = c.get(ctx, true)
		if err != nil {
			return nil, err
		}
		if key, ok = keys.LookupKeyID(kid); !ok {
			return nil, fmt.Errorf("signing key %q not found in JWKS", kid)
		}
	}

	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to export signing key: %w", err)
	}
	return raw, nil
}

func (c *JWKSCache) get(ctx context.Context, force bool) (jwk.Set, error) {
	if !force {
		c.mu.RLock()
		if c.keys != nil && time.Now().Before(c.expires) {
			keys := c.keys
			c.mu.RUnlock()
			return keys, nil
		}
		c.mu.RUnlock()
	}

	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	c.mu.Lock()
	c.keys = keys
	c.expires = time.Now().Add(c.ttl)
	c.mu.Unlock()

	return keys, nil
}

func (c *JWKSCache) fetch(ctx context.Context) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	return jwk.Parse(body)
}
