package admin

import "net/http"

// StatsResponse is the JSON response for GET /admin/api/v1/stats: a
// cheap operator-facing snapshot across the services the handler has
// been wired with. Any unwired service is simply omitted.
type StatsResponse struct {
	GovernanceMode   string `json:"governance_mode,omitempty"`
	ExecutionAllowed bool   `json:"execution_allowed"`
	DroppedLedger    int64  `json:"dropped_ledger_records"`
	OpenConflicts    int    `json:"open_vfs_conflicts"`
}

func (h *AdminAPIHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{}

	if h.governance != nil {
		resp.GovernanceMode = string(h.governance.State().Mode)
		resp.ExecutionAllowed = h.governance.IsExecutionAllowed().Allowed
	}
	if h.ledger != nil {
		resp.DroppedLedger = h.ledger.DroppedRecords()
	}
	if h.vfs != nil {
		resp.OpenConflicts = len(h.vfs.Conflicts())
	}

	h.respondJSON(w, http.StatusOK, resp)
}
