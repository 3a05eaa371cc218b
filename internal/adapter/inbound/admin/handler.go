// Package admin exposes the Core's operator-facing JSON API: ledger
// queries and attestation, governance state and overrides, policy
// evaluation, alert status, and VFS conflict management. It is
// localhost-only by default (AUTH-01) and carries CSRF/CSP protection
// for the rare case it is tunnelled to a remote operator.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos-governance/core/internal/domain/guard"
	"github.com/coreos-governance/core/internal/service"
)

// AdminAPIHandler wires the Core's domain services into an HTTP router.
// Every field is optional: a handler group whose service is nil responds
// 503 rather than panicking, so the admin surface can be partially wired
// in environments that only need a subset of it (tests, single-module CLIs).
type AdminAPIHandler struct {
	ledger       *service.LedgerService
	attestation  *service.AttestationService
	governance   *service.GovernanceService
	policy       *service.PolicyEvaluationService
	alert        *service.AlertService
	guardService *service.GuardService
	vfs          *service.VFSService

	logger             *slog.Logger
	requireLocalhost   bool
	multiTenantEnabled bool
	rateLimitMax       int
	rateLimitWindow    time.Duration
}

// AdminAPIOption configures an AdminAPIHandler.
type AdminAPIOption func(*AdminAPIHandler)

func WithLedgerService(s *service.LedgerService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.ledger = s }
}

func WithAttestationService(s *service.AttestationService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.attestation = s }
}

func WithGovernanceService(s *service.GovernanceService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.governance = s }
}

func WithPolicyEvaluationService(s *service.PolicyEvaluationService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.policy = s }
}

func WithAlertService(s *service.AlertService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.alert = s }
}

func WithGuardService(s *service.GuardService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.guardService = s }
}

func WithVFSService(s *service.VFSService) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.vfs = s }
}

// WithRequireLocalhost toggles the AUTH-01 localhost-only gate. Defaults to
// true; set false only behind a trusted reverse proxy that already
// authenticates the caller.
func WithRequireLocalhost(require bool) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.requireLocalhost = require }
}

func WithMultiTenantEnabled(enabled bool) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.multiTenantEnabled = enabled }
}

func WithLogger(logger *slog.Logger) AdminAPIOption {
	return func(h *AdminAPIHandler) { h.logger = logger }
}

// WithRateLimit overrides the per-IP admin API rate limit. Defaults to
// 120 requests/minute if never called or if maxRequests <= 0.
func WithRateLimit(maxRequests int, window time.Duration) AdminAPIOption {
	return func(h *AdminAPIHandler) {
		h.rateLimitMax = maxRequests
		h.rateLimitWindow = window
	}
}

// NewAdminAPIHandler builds an AdminAPIHandler from the given options.
func NewAdminAPIHandler(opts ...AdminAPIOption) *AdminAPIHandler {
	h := &AdminAPIHandler{
		logger:           slog.Default(),
		requireLocalhost: true,
		rateLimitMax:     120,
		rateLimitWindow:  time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rateLimitMax <= 0 {
		h.rateLimitMax = 120
	}
	if h.rateLimitWindow <= 0 {
		h.rateLimitWindow = time.Minute
	}
	return h
}

// Handler returns the fully wrapped router: security headers, CSRF
// protection, rate limiting, and (unless disabled) the localhost gate.
func (h *AdminAPIHandler) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /admin/api/v1/ledger/records", h.handleLedgerRecords)
	mux.HandleFunc("POST /admin/api/v1/ledger/validate", h.handleLedgerValidate)

	mux.HandleFunc("POST /admin/api/v1/attestation/cut-and-sign", h.handleAttestationCutAndSign)
	mux.HandleFunc("POST /admin/api/v1/attestation/verify", h.handleAttestationVerify)
	mux.HandleFunc("POST /admin/api/v1/attestation/continuity", h.handleAttestationContinuity)
	mux.HandleFunc("GET /admin/api/v1/attestation/public-key", h.handleAttestationPublicKey)

	mux.HandleFunc("GET /admin/api/v1/governance/state", h.handleGovernanceState)
	mux.HandleFunc("GET /admin/api/v1/governance/reactions", h.handleGovernanceReactions)
	mux.HandleFunc("GET /admin/api/v1/governance/execution-gate", h.handleGovernanceExecutionGate)
	mux.HandleFunc("POST /admin/api/v1/governance/override", h.handleGovernanceOverride)

	mux.HandleFunc("POST /admin/api/v1/policy/evaluate-capability", h.handlePolicyEvaluateCapability)
	mux.HandleFunc("POST /admin/api/v1/policy/evaluate-space", h.handlePolicyEvaluateSpace)

	mux.HandleFunc("POST /admin/api/v1/alert/evaluate", h.handleAlertEvaluate)

	mux.HandleFunc("POST /admin/api/v1/vfs/check-write", h.handleVFSCheckWrite)
	mux.HandleFunc("POST /admin/api/v1/vfs/scan", h.handleVFSScan)
	mux.HandleFunc("GET /admin/api/v1/vfs/conflicts", h.handleVFSListConflicts)
	mux.HandleFunc("POST /admin/api/v1/vfs/conflicts/resolve", h.handleVFSResolveConflict)
	mux.HandleFunc("POST /admin/api/v1/vfs/conflicts/ignore", h.handleVFSIgnoreConflict)
	mux.HandleFunc("POST /admin/api/v1/vfs/conflicts/sync-replay", h.handleVFSReplaySyncConflict)
	mux.HandleFunc("POST /admin/api/v1/vfs/conflicts/manual", h.handleVFSReportManualConflict)

	mux.HandleFunc("GET /admin/api/v1/stats", h.handleStats)

	var handler http.Handler = mux
	handler = apiRateLimitMiddleware(h.rateLimitMax, h.rateLimitWindow, handler)
	handler = csrfMiddleware(handler)
	handler = cspMiddleware(handler)
	if h.requireLocalhost {
		handler = h.adminAuthMiddleware(handler)
	}
	return handler
}

// resolveSession extracts the Guard's tenant/session headers plus the
// trusted platform-identity header (injected by a front door that has
// already authenticated the caller at the OS/browser layer) and resolves
// a guard.SessionContext for the request.
func (h *AdminAPIHandler) resolveSession(r *http.Request) (guard.SessionContext, error) {
	if h.guardService == nil {
		return guard.SessionContext{}, errGuardNotConfigured
	}
	platformIdentityID := r.Header.Get("X-Platform-Identity")
	return h.guardService.Resolve(
		r.Context(),
		r.Header.Get("x-tenant-id"),
		r.Header.Get("x-session-id"),
		platformIdentityID,
		platformIdentityID != "",
		r.Header.Get("x-device-id"),
	)
}

func (h *AdminAPIHandler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode admin API response", "error", err)
	}
}

func (h *AdminAPIHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}
