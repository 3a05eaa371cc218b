package admin

import (
	"encoding/json"
	"net/http"

	domainalert "github.com/coreos-governance/core/internal/domain/alert"
)

func (h *AdminAPIHandler) handleAlertEvaluate(w http.ResponseWriter, r *http.Request) {
	if h.alert == nil {
		h.respondError(w, http.StatusServiceUnavailable, "alert service not configured")
		return
	}
	var req domainalert.Input
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Environment == "" {
		h.respondError(w, http.StatusBadRequest, "Environment is required")
		return
	}
	result, err := h.alert.Evaluate(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}
