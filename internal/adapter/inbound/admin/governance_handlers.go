package admin

import (
	"encoding/json"
	"net/http"

	"github.com/coreos-governance/core/internal/domain/governance"
)

func (h *AdminAPIHandler) handleGovernanceState(w http.ResponseWriter, r *http.Request) {
	if h.governance == nil {
		h.respondError(w, http.StatusServiceUnavailable, "governance service not configured")
		return
	}
	h.respondJSON(w, http.StatusOK, h.governance.State())
}

func (h *AdminAPIHandler) handleGovernanceReactions(w http.ResponseWriter, r *http.Request) {
	if h.governance == nil {
		h.respondError(w, http.StatusServiceUnavailable, "governance service not configured")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"reactions": h.governance.Reactions()})
}

func (h *AdminAPIHandler) handleGovernanceExecutionGate(w http.ResponseWriter, r *http.Request) {
	if h.governance == nil {
		h.respondError(w, http.StatusServiceUnavailable, "governance service not configured")
		return
	}
	h.respondJSON(w, http.StatusOK, h.governance.IsExecutionAllowed())
}

type governanceOverrideRequest struct {
	TargetMode governance.Mode `json:"target_mode"`
	Passphrase string          `json:"passphrase,omitempty"`
}

// handleGovernanceOverride implements the owner-only manual override
// (OwnerOverride): it requires a resolved session with at least owner
// role, and for a platform identity also the owner passphrase.
func (h *AdminAPIHandler) handleGovernanceOverride(w http.ResponseWriter, r *http.Request) {
	if h.governance == nil {
		h.respondError(w, http.StatusServiceUnavailable, "governance service not configured")
		return
	}
	sc, err := h.resolveSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req governanceOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TargetMode == "" {
		h.respondError(w, http.StatusBadRequest, "target_mode is required")
		return
	}
	state, err := h.governance.OwnerOverride(r.Context(), sc, req.TargetMode, req.Passphrase)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, state)
}
