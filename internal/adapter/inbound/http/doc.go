// Package http provides the Core's operator-facing HTTP surface: health
// checks, Prometheus metrics, and the admin JSON API (delegated to
// adapter/inbound/admin), wrapped in the same security middleware the
// Core uses everywhere else on this port.
//
// # Usage
//
// Create and start the HTTP transport:
//
//	transport := http.NewTransport(adminHandler,
//	    http.WithAddr(":8080"),
//	    http.WithTLS("cert.pem", "key.pem"),
//	    http.WithAllowedOrigins([]string{"https://example.com"}),
//	    http.WithLogger(logger),
//	    http.WithHealthChecker(healthChecker),
//	)
//	err := transport.Start(ctx)
//
// # Endpoints
//
//	GET  /health           - liveness/readiness check (503 when degraded)
//	GET  /metrics          - Prometheus exposition
//	/admin/*               - the admin API, delegated to the admin.AdminAPIHandler
//
// # Security
//
//   - TLS 1.2 minimum when HTTPS is enabled via WithTLS
//   - DNS rebinding protection: Origin header validation via WithAllowedOrigins
//   - Real IP extraction from X-Forwarded-For/X-Real-IP, for rate limiting
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//
//  1. MetricsMiddleware  - records request_duration_seconds/requests_total
//  2. RequestIDMiddleware - assigns/propagates a request ID, enriches the logger
//  3. RealIPMiddleware    - extracts client IP from proxy headers
//  4. DNSRebindingProtection - validates Origin header
//  5. mux                - routes to /health, /metrics, or the admin handler
package http
