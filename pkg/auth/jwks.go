package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// JSONWebKey is a single entry of a published key set.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet is the document served at an identity provider's jwks.json.
type KeySet struct {
	Keys []JSONWebKey `json:"keys"`
}

// KeySetFetcher retrieves the key set published at url.
type KeySetFetcher interface {
	Fetch(ctx context.Context, url string) (*KeySet, error)
}

// WellKnownJWKSURL returns the key set location of a Cognito user pool.
func WellKnownJWKSURL(region, poolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json", region, poolID)
}

// PoolIssuer returns the issuer claim tokens of a Cognito user pool carry.
func PoolIssuer(region, poolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID)
}

// HTTPKeySetFetcher fetches key sets over HTTP, one round-trip per call.
type HTTPKeySetFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPKeySetFetcher creates a fetcher. A zero timeout leaves the deadline
// to the caller's context.
func NewHTTPKeySetFetcher(client *http.Client, timeout time.Duration) *HTTPKeySetFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPKeySetFetcher{client: client, timeout: timeout}
}

// Fetch implements KeySetFetcher
func (f *HTTPKeySetFetcher) Fetch(ctx context.Context, url string) (*KeySet, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build key set request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch key set: unexpected status %d", resp.StatusCode)
	}

	var set KeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode key set: %w", err)
	}
	return &set, nil
}

// CachingKeySetFetcher keeps fetched key sets per URL for a fixed TTL.
type CachingKeySetFetcher struct {
	next KeySetFetcher
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cachedKeySet
}

type cachedKeySet struct {
	set       *KeySet
	expiresAt time.Time
}

// NewCachingKeySetFetcher wraps next with a TTL cache. A non-positive ttl
// disables caching and returns next unchanged.
func NewCachingKeySetFetcher(next KeySetFetcher, ttl time.Duration) KeySetFetcher {
	if ttl <= 0 {
		return next
	}
	return &CachingKeySetFetcher{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedKeySet),
	}
}

// Fetch implements KeySetFetcher
func (c *CachingKeySetFetcher) Fetch(ctx context.Context, url string) (*KeySet, error) {
	c.mu.Lock()
	entry, ok := c.entries[url]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.set, nil
	}

	set, err := c.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[url] = cachedKeySet{set: set, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return set, nil
}

// SelectKey picks the verification key for a token: the key whose kid matches,
// or the first listed key when the token names none.
func (s *KeySet) SelectKey(kid string) (*JSONWebKey, error) {
	if s == nil || len(s.Keys) == 0 {
		return nil, ErrNoUsableKey
	}
	if kid == "" {
		return &s.Keys[0], nil
	}
	for i := range s.Keys {
		if s.Keys[i].Kid == kid {
			return &s.Keys[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no key with kid %q", ErrNoUsableKey, kid)
}

// RSAPublicKey converts the JWK into an RSA public key.
func (k *JSONWebKey) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("%w: key type %q", ErrNoUsableKey, k.Kty)
	}

	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("%w: modulus: %v", ErrNoUsableKey, err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("%w: exponent: %v", ErrNoUsableKey, err)
	}

	exponent := new(big.Int).SetBytes(e)
	if len(n) == 0 || !exponent.IsInt64() || exponent.Int64() < 3 {
		return nil, fmt.Errorf("%w: malformed RSA parameters", ErrNoUsableKey)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(exponent.Int64()),
	}, nil
}

// NewRSAJSONWebKey encodes an RSA public key as a JWK.
func NewRSAJSONWebKey(kid string, key *rsa.PublicKey) JSONWebKey {
	return JSONWebKey{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
}
