package sentinelgate

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithServerAddr sets the Core's admin API address.
// If not set, defaults to the CORE_SERVER_ADDR environment variable.
func WithServerAddr(addr string) Option {
	return func(c *Client) {
		c.serverAddr = addr
	}
}

// WithTenantID sets the X-Tenant-ID sent on every request, used when
// the Core runs in multi-tenant mode. If not set, defaults to the
// CORE_TENANT_ID environment variable.
func WithTenantID(tenantID string) Option {
	return func(c *Client) {
		c.tenantID = tenantID
	}
}

// WithSessionID sets the session ID sent on every request. If not
// set, defaults to the CORE_SESSION_ID environment variable.
func WithSessionID(sessionID string) Option {
	return func(c *Client) {
		c.sessionID = sessionID
	}
}

// WithPlatformIdentity sets the trusted platform identity header. Use
// this when the caller sits behind a front door that has already
// authenticated the end user.
func WithPlatformIdentity(identityID string) Option {
	return func(c *Client) {
		c.platformIdentity = identityID
	}
}

// WithFailMode sets the fail mode when the server is unreachable.
// Valid values are "open" (allow on failure) and "closed" (deny on failure).
// If not set, defaults to the CORE_FAIL_MODE environment variable or "open".
func WithFailMode(mode string) Option {
	return func(c *Client) {
		c.failMode = mode
	}
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to the CORE_TIMEOUT environment variable or 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCacheTTL sets the cache entry time-to-live.
// If not set, defaults to the CORE_CACHE_TTL environment variable or 5 seconds.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = d
	}
}

// WithCacheMaxSize sets the maximum number of entries in the cache.
// If not set, defaults to the CORE_CACHE_MAX_SIZE environment variable or 1000.
func WithCacheMaxSize(n int) Option {
	return func(c *Client) {
		c.cacheMaxSize = n
	}
}

// WithHTTPClient sets a custom http.Client for making requests.
// This is useful for testing, proxying, or custom transport configurations.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}
