package provider

import (
	"sync"
	"time"
)

// refreshSkew is how early a token is treated as expired so a request never
// goes out with a token about to lapse mid-flight.
const refreshSkew = 5 * time.Minute

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// tokenCache holds per-user access tokens in memory. The clock is injected
// so expiry behavior is testable without sleeping.
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]cachedToken
	now    func() time.Time
}

func newTokenCache(now func() time.Time) *tokenCache {
	if now == nil {
		now = time.Now
	}
	return &tokenCache{
		tokens: make(map[string]cachedToken),
		now:    now,
	}
}

func (c *tokenCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok, ok := c.tokens[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(tok.expiresAt.Add(-refreshSkew)) {
		delete(c.tokens, key)
		return "", false
	}
	return tok.value, true
}

func (c *tokenCache) put(key, value string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = cachedToken{value: value, expiresAt: expiresAt}
}

func (c *tokenCache) drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, key)
}
