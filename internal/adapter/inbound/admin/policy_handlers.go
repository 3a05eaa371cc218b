package admin

import (
	"encoding/json"
	"net/http"

	"github.com/coreos-governance/core/internal/service"
)

type policyEvaluateResponse struct {
	Decision    interface{} `json:"decision"`
	Explanation interface{} `json:"explanation"`
}

func (h *AdminAPIHandler) handlePolicyEvaluateCapability(w http.ResponseWriter, r *http.Request) {
	if h.policy == nil {
		h.respondError(w, http.StatusServiceUnavailable, "policy evaluation service not configured")
		return
	}
	sc, err := h.resolveSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req service.CapabilityEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CapabilityID == "" {
		h.respondError(w, http.StatusBadRequest, "CapabilityID is required")
		return
	}
	decision, explain := h.policy.EvaluateCapability(r.Context(), sc, req)
	h.respondJSON(w, http.StatusOK, policyEvaluateResponse{Decision: decision, Explanation: explain})
}

func (h *AdminAPIHandler) handlePolicyEvaluateSpace(w http.ResponseWriter, r *http.Request) {
	if h.policy == nil {
		h.respondError(w, http.StatusServiceUnavailable, "policy evaluation service not configured")
		return
	}
	sc, err := h.resolveSession(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req service.SpaceEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SpaceID == "" {
		h.respondError(w, http.StatusBadRequest, "SpaceID is required")
		return
	}
	decision, explain := h.policy.EvaluateSpaceAccess(sc, req)
	h.respondJSON(w, http.StatusOK, policyEvaluateResponse{Decision: decision, Explanation: explain})
}
