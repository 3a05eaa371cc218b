package sentinelgate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is the Core SDK client. It calls the Core's admin policy
// evaluation endpoints so a Go process can check a capability or
// space action before taking it.
type Client struct {
	serverAddr       string
	tenantID         string
	sessionID        string
	platformIdentity string
	failMode         string
	timeout          time.Duration
	httpClient       *http.Client

	// Cache fields. Only allow decisions are cached; deny and
	// require_stepup are never cached since they are often
	// time- or attempt-sensitive.
	cache        sync.Map
	cacheTTL     time.Duration
	cacheMaxSize int
	cacheCount   int64
	cacheMu      sync.Mutex

	logger *slog.Logger
}

// cacheEntry is a cached evaluation response with expiry.
type cacheEntry struct {
	response  *EvaluateResponse
	expiresAt time.Time
	createdAt time.Time
}

// NewClient creates a new Core SDK client. It reads configuration
// from CORE_* environment variables by default; options override
// the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serverAddr:       os.Getenv("CORE_SERVER_ADDR"),
		tenantID:         os.Getenv("CORE_TENANT_ID"),
		sessionID:        os.Getenv("CORE_SESSION_ID"),
		platformIdentity: os.Getenv("CORE_PLATFORM_IDENTITY"),
		failMode:         envOrDefault("CORE_FAIL_MODE", "open"),
		timeout:          parseDurationEnv("CORE_TIMEOUT", 5*time.Second),
		cacheTTL:         parseDurationEnv("CORE_CACHE_TTL", 5*time.Second),
		cacheMaxSize:     parseIntEnv("CORE_CACHE_MAX_SIZE", 1000),
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// EvaluateCapability checks whether the calling session may invoke a
// capability. On deny it returns a *PolicyDeniedError; on
// require_stepup a *StepUpRequiredError. On server unreachable with
// fail_mode=open it returns an allow decision.
func (c *Client) EvaluateCapability(ctx context.Context, req CapabilityEvaluateRequest) (*EvaluateResponse, error) {
	cacheKey := "capability:" + req.CapabilityID + ":" + c.hashVars(req.Vars)
	if resp, ok := c.getFromCache(cacheKey); ok {
		return resp, nil
	}

	var resp EvaluateResponse
	err := c.doRequest(ctx, "/admin/api/v1/policy/evaluate-capability", req, &resp)
	if err != nil {
		return c.handleUnreachable(err)
	}
	return c.handleDecision(cacheKey, &resp)
}

// EvaluateSpaceAccess checks whether the calling session may perform
// an action against a space. Error semantics match EvaluateCapability.
func (c *Client) EvaluateSpaceAccess(ctx context.Context, req SpaceEvaluateRequest) (*EvaluateResponse, error) {
	cacheKey := "space:" + req.SpaceID + ":" + string(req.Action)
	if resp, ok := c.getFromCache(cacheKey); ok {
		return resp, nil
	}

	var resp EvaluateResponse
	err := c.doRequest(ctx, "/admin/api/v1/policy/evaluate-space", req, &resp)
	if err != nil {
		return c.handleUnreachable(err)
	}
	return c.handleDecision(cacheKey, &resp)
}

// CheckCapability is a convenience wrapper over EvaluateCapability
// that returns a bool instead of an error on policy denial.
func (c *Client) CheckCapability(ctx context.Context, req CapabilityEvaluateRequest) (bool, error) {
	resp, err := c.EvaluateCapability(ctx, req)
	if err != nil {
		var denied *PolicyDeniedError
		if errors.As(err, &denied) {
			return false, nil
		}
		return false, err
	}
	return resp.Decision.Type == DecisionAllow, nil
}

// handleDecision turns a deny/require_stepup response into the
// matching typed error, and caches allow responses.
func (c *Client) handleDecision(cacheKey string, resp *EvaluateResponse) (*EvaluateResponse, error) {
	switch resp.Decision.Type {
	case DecisionAllow:
		c.putInCache(cacheKey, resp)
		return resp, nil
	case DecisionDeny, DecisionDegrade:
		return nil, &PolicyDeniedError{
			Reason:        resp.Decision.Reason,
			FailedRule:    resp.Explanation.FailedRule,
			CorrelationID: resp.Explanation.CorrelationID,
		}
	case DecisionRequireStepUp:
		return nil, &StepUpRequiredError{ChallengeID: resp.Decision.ChallengeID}
	default:
		return resp, nil
	}
}

// handleUnreachable translates a connection-level error according to
// fail_mode: "open" synthesizes an allow decision, "closed" returns
// ServerUnreachableError.
func (c *Client) handleUnreachable(err error) (*EvaluateResponse, error) {
	if !isConnectionError(err) {
		return nil, err
	}
	if c.failMode == "closed" {
		return nil, &ServerUnreachableError{Cause: err}
	}
	c.logger.Warn("Core admin API unreachable, failing open",
		"server_addr", c.serverAddr,
		"error", err,
	)
	return &EvaluateResponse{
		Decision: PolicyDecision{Type: DecisionAllow, Reason: "server unreachable, fail-open"},
	}, nil
}

// doRequest performs a POST to the Core's admin API, attaching the
// guard session headers the handler's resolveSession expects.
func (c *Client) doRequest(ctx context.Context, path string, body any, result any) error {
	url := strings.TrimRight(c.serverAddr, "/") + path

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.tenantID != "" {
		httpReq.Header.Set("x-tenant-id", c.tenantID)
	}
	if c.sessionID != "" {
		httpReq.Header.Set("x-session-id", c.sessionID)
	}
	if c.platformIdentity != "" {
		httpReq.Header.Set("X-Platform-Identity", c.platformIdentity)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &SentinelGateError{
			Code: fmt.Sprintf("HTTP_%d", httpResp.StatusCode),
			Err:  fmt.Errorf("server returned %d: %s", httpResp.StatusCode, string(respBody)),
		}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// hashVars produces a short, stable digest of a vars map for use in a
// cache key.
func (c *Client) hashVars(vars map[string]interface{}) string {
	if len(vars) == 0 {
		return ""
	}
	h := sha256.New()
	b, _ := json.Marshal(vars)
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// getFromCache retrieves a cached response if it exists and hasn't expired.
func (c *Client) getFromCache(key string) (*EvaluateResponse, bool) {
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(key)
		c.cacheMu.Lock()
		c.cacheCount--
		c.cacheMu.Unlock()
		return nil, false
	}
	return entry.response, true
}

// putInCache stores a response in the cache.
func (c *Client) putInCache(key string, resp *EvaluateResponse) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	// Best-effort eviction: if over max size, delete some expired entries.
	if c.cacheCount >= int64(c.cacheMaxSize) {
		now := time.Now()
		evicted := 0
		c.cache.Range(func(k, v any) bool {
			entry := v.(*cacheEntry)
			if now.After(entry.expiresAt) {
				c.cache.Delete(k)
				evicted++
			}
			return evicted < 100
		})
		c.cacheCount -= int64(evicted)

		// If still over limit, evict the oldest entry.
		if c.cacheCount >= int64(c.cacheMaxSize) {
			var oldest time.Time
			var oldestKey any
			c.cache.Range(func(k, v any) bool {
				entry := v.(*cacheEntry)
				if oldest.IsZero() || entry.createdAt.Before(oldest) {
					oldest = entry.createdAt
					oldestKey = k
				}
				return true
			})
			if oldestKey != nil {
				c.cache.Delete(oldestKey)
				c.cacheCount--
			}
		}
	}

	c.cache.Store(key, &cacheEntry{
		response:  resp,
		expiresAt: time.Now().Add(c.cacheTTL),
		createdAt: time.Now(),
	})
	c.cacheCount++
}

// isConnectionError reports whether err is handled as the server being
// unreachable: every error except an HTTP-level error response
// (*SentinelGateError), so request-build and response-decode failures
// count as well as refused connections and timeouts.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var sgErr *SentinelGateError
	if errors.As(err, &sgErr) {
		return false
	}
	return true
}

// Helper functions for env var parsing.

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

func parseIntEnv(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return defaultVal
}
