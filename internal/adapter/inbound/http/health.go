package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"

	"github.com/coreos-governance/core/internal/domain/governance"
	"github.com/coreos-governance/core/internal/service"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// HealthChecker verifies component health: ledger backpressure and
// governance mode are the two conditions that should surface as
// unhealthy, since both indicate the Core is actively degrading writes.
type HealthChecker struct {
	ledger     *service.LedgerService
	governance *service.GovernanceService
	version    string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(
	ledger *service.LedgerService,
	governance *service.GovernanceService,
	version string,
) *HealthChecker {
	return &HealthChecker{
		ledger:     ledger,
		governance: governance,
		version:    version,
	}
}

// Check performs health checks on all components.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.ledger != nil {
		depth := h.ledger.QueueDepth()
		capacity := h.ledger.QueueCapacity()
		percentFull := 0
		if capacity > 0 {
			percentFull = depth * 100 / capacity
		}
		if percentFull > 90 {
			checks["ledger_queue"] = fmt.Sprintf("degraded: %d/%d (%d%%)", depth, capacity, percentFull)
			healthy = false
		} else {
			checks["ledger_queue"] = fmt.Sprintf("ok: %d/%d (%d%%)", depth, capacity, percentFull)
		}
		if drops := h.ledger.DroppedRecords(); drops > 0 {
			checks["ledger_drops"] = fmt.Sprintf("%d dropped", drops)
		}
	} else {
		checks["ledger_queue"] = "not configured"
	}

	if h.governance != nil {
		mode := h.governance.State().Mode
		checks["governance_mode"] = string(mode)
		if mode == governance.ModeHardFreeze {
			healthy = false
		}
	} else {
		checks["governance_mode"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return HealthResponse{
		Status:  status,
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}
